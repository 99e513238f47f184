// Package debuglog records operational events at two sinks: a live
// ephemeral sink (the process slog logger, written synchronously) and
// a durable sink (an append-only SQLite-backed buffer, written
// asynchronously so persistence latency never stalls callers).
//
// # Architecture
//
//	Logger.Info(...) ──sync──▶ ephemeral sink (slog)
//	        │
//	        └──enqueue──▶ Buffer (process-wide, append-only)
//	                          │  background batches
//	                          ▼
//	                      Repository (debug_log table)
//
// The Buffer is a process-wide singleton bound via Bind() once storage
// is up; Loggers tolerate it being absent and simply skip the durable
// append. Logging surfaces no errors.
//
// # Usage
//
//	buf := debuglog.NewBuffer(debuglog.NewSQLiteRepository(db), debuglog.Options{})
//	go buf.Run(ctx)
//	debuglog.Bind(buf)
//
//	log := debuglog.New(slogger, "mqtt", "connection")
//	log.Notice("broker reconnected")
package debuglog
