// Package recorder writes conversion history in the background.
//
// The converter hands each finished conversion to Record, which fills in
// the record ID, creation time and input hash, truncates long text, and
// queues it on a buffered channel. A single worker drains the channel into
// history storage. Close drains whatever is still queued.
//
//	rec := recorder.New(store, &cfg.History.Recorder, collector)
//	defer rec.Close()
//
//	_ = rec.Record(ctx, &history.Record{
//	    RequestID: requestID,
//	    Input:     input,
//	    Output:    output,
//	})
package recorder
