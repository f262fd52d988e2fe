// Command liborion builds the Orion search engine as a C shared library:
//
//	go build -buildmode=c-shared -o liborion.so ./cmd/liborion
//
// Every call shares one process-wide engine, so a new search supersedes any
// search still in flight. Result memory is owned by the library until it is
// handed back to orion_free_search_results.
package main

/*
#include "bridge.h"
*/
import "C"

import (
	"context"
	"unsafe"

	"orion/search"
)

//export orion_search_files
func orion_search_files(query, directory *C.char, cb C.orion_progress_callback, userData unsafe.Pointer) *C.orion_search_results_t {
	var onProgress search.ProgressFunc
	if cb != nil {
		onProgress = func(p search.Progress) {
			C.orion_call_progress(cb, C.double(p.Fraction), userData)
		}
	}

	lib := shared()
	paths, err := searchBounded(context.Background(), lib.engine, C.GoString(query), C.GoString(directory), onProgress, searchCeiling)
	logOutcome(lib.logger, err)
	return newResults(paths)
}

//export orion_free_search_results
func orion_free_search_results(results *C.orion_search_results_t) {
	if results == nil {
		return
	}
	if results.results != nil {
		for _, item := range unsafe.Slice(results.results, int(results.count)) {
			C.free(unsafe.Pointer(item.path))
		}
		C.free(unsafe.Pointer(results.results))
	}
	C.free(unsafe.Pointer(results))
}

//export orion_open_in_finder
func orion_open_in_finder(path *C.char) {
	lib := shared()
	if err := lib.revealer.Reveal(C.GoString(path)); err != nil {
		lib.logger.Printf("reveal failed: %v", err)
	}
}

//export orion_cancel_search
func orion_cancel_search() {
	shared().engine.Cancel()
}

// newResults copies paths into C memory; a nil or empty slice yields an
// empty, non-NULL result set
func newResults(paths []string) *C.orion_search_results_t {
	out := (*C.orion_search_results_t)(C.malloc(C.size_t(unsafe.Sizeof(C.orion_search_results_t{}))))
	out.results = nil
	out.count = 0
	if len(paths) == 0 {
		return out
	}

	size := C.size_t(len(paths)) * C.size_t(unsafe.Sizeof(C.orion_search_result_t{}))
	arr := (*C.orion_search_result_t)(C.malloc(size))
	items := unsafe.Slice(arr, len(paths))
	for i, p := range paths {
		items[i].path = C.CString(p)
	}
	out.results = arr
	out.count = C.int32_t(len(paths))
	return out
}

func main() {}
