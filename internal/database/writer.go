// internal/database/writer.go
package database

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"tablehunt/internal/game"
)

// Writer decouples the gameplay call path from Postgres. Snapshots and match
// records enter a bounded queue without blocking; a single goroutine drains
// it. Write failures are logged and dropped, never retried, because the
// mirror is non-authoritative.
type Writer struct {
	pool *pgxpool.Pool
	log  *logrus.Logger

	jobs chan writerJob
	wg   sync.WaitGroup
	once sync.Once
}

type writerJob struct {
	snap  *game.RoomSnapshot
	match *game.MatchRecord
}

// NewWriter starts the background drain goroutine.
func NewWriter(pool *pgxpool.Pool, log *logrus.Logger) *Writer {
	w := &Writer{
		pool: pool,
		log:  log,
		jobs: make(chan writerJob, 256),
	}
	w.wg.Add(1)
	go w.run()
	return w
}

// Close stops accepting work and waits for the queue to drain.
func (w *Writer) Close() {
	w.once.Do(func() { close(w.jobs) })
	w.wg.Wait()
}

// RecordRoom enqueues a snapshot upsert. Drops with a log line when the queue
// is full.
func (w *Writer) RecordRoom(snap game.RoomSnapshot) {
	w.enqueue(writerJob{snap: &snap})
}

// RecordMatch enqueues a match history insert.
func (w *Writer) RecordMatch(rec game.MatchRecord) {
	w.enqueue(writerJob{match: &rec})
}

func (w *Writer) enqueue(job writerJob) {
	select {
	case w.jobs <- job:
	default:
		w.log.Warn("persistence queue full, dropping write")
	}
}

func (w *Writer) run() {
	defer w.wg.Done()
	for job := range w.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		var err error
		switch {
		case job.snap != nil:
			err = UpsertRoomSnapshot(ctx, w.pool, *job.snap)
		case job.match != nil:
			err = InsertMatchRecord(ctx, w.pool, *job.match)
		}
		cancel()
		if err != nil {
			w.log.WithError(err).Warn("persistence write failed")
		}
	}
}
