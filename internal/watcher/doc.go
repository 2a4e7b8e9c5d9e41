// Package watcher re-mines a transaction file whenever it changes.
//
// The parent directory of the file is watched with fsnotify, since editors
// and exporters often replace a file by writing a temporary file and
// renaming it over the original. Bursts of events are coalesced: the
// callback runs once the file has been quiet for the debounce interval, and
// never concurrently with itself.
//
// Example usage:
//
//	w, err := watcher.New("/data/browsing.txt", 500*time.Millisecond, func(ctx context.Context) error {
//		return remine(ctx)
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := w.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//	defer w.Stop()
package watcher
