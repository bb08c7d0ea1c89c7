// pkg/dispatch/queue.go
// Copyright(c) 2024-2026 apollo64 contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package dispatch

import (
	"os"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Queue is the external scheduled-action queue the dispatcher enqueues
// onto; the core requires only this one method (spec §6). Any error
// AddAction raises aborts the dispatch.
type Queue interface {
	AddAction(record map[string]any) error
}

// MemoryQueue is a Queue that keeps accepted records in memory, in
// arrival order. It is the fake the dispatcher's own tests use, and is
// also suitable for driving a standalone demo without a real
// downstream simulation pipeline.
type MemoryQueue struct {
	mu      sync.Mutex
	records []map[string]any
	reject  error
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{}
}

// FailNextWith makes the next AddAction call (and only that one)
// return err instead of accepting the record; used to exercise the
// dispatcher's enqueue-failure path.
func (q *MemoryQueue) FailNextWith(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.reject = err
}

func (q *MemoryQueue) AddAction(record map[string]any) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.reject != nil {
		err := q.reject
		q.reject = nil
		return err
	}
	q.records = append(q.records, record)
	return nil
}

// Records returns every record accepted so far, in arrival order.
func (q *MemoryQueue) Records() []map[string]any {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]map[string]any, len(q.records))
	copy(out, q.records)
	return out
}

// FileQueue is a Queue that appends each accepted record, msgpack
// encoded, to a file — a stand-in for the real downstream scheduled
// queue good enough for demo runs and for inspecting queued records
// after the fact.
type FileQueue struct {
	mu   sync.Mutex
	path string
}

func NewFileQueue(path string) *FileQueue {
	return &FileQueue{path: path}
}

func (q *FileQueue) AddAction(record map[string]any) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	encoded, err := msgpack.Marshal(record)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(q.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	var length [4]byte
	n := len(encoded)
	length[0] = byte(n >> 24)
	length[1] = byte(n >> 16)
	length[2] = byte(n >> 8)
	length[3] = byte(n)
	if _, err := f.Write(length[:]); err != nil {
		return err
	}
	_, err = f.Write(encoded)
	return err
}

// ReadFileQueue decodes every record previously appended by a
// FileQueue at path, in arrival order.
func ReadFileQueue(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var records []map[string]any
	for offset := 0; offset < len(data); {
		if offset+4 > len(data) {
			break
		}
		length := int(data[offset])<<24 | int(data[offset+1])<<16 | int(data[offset+2])<<8 | int(data[offset+3])
		offset += 4
		if offset+length > len(data) {
			break
		}
		var record map[string]any
		if err := msgpack.Unmarshal(data[offset:offset+length], &record); err != nil {
			return nil, err
		}
		records = append(records, record)
		offset += length
	}
	return records, nil
}
