// pkg/dispatch/recorder.go
// Copyright(c) 2024-2026 apollo64 contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package dispatch

import (
	"os"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Recorder is the optional replay-intent recorder (spec §6). Its
// methods are only called when RecordIntents is enabled on the
// dispatcher. RecordPanelControl is part of the external contract but
// no dispatcher operation currently calls it — no manual action in
// scope maps to a panel-control intent.
type Recorder interface {
	RecordChecklistAck(record map[string]any)
	RecordDskyEntry(record map[string]any)
	RecordPanelControl(record map[string]any)
}

// RecorderStats tallies how many times each Recorder method has been
// invoked, matching the shape the end-to-end scenarios in spec §8
// assert against (recorder.stats.checklist.manual, etc).
type RecorderStats struct {
	Checklist    int
	DskyEntry    int
	PanelControl int
}

// MemoryRecorder is an in-memory Recorder used by tests.
type MemoryRecorder struct {
	mu              sync.Mutex
	checklistAcks   []map[string]any
	dskyEntries     []map[string]any
	panelControls   []map[string]any
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

func (r *MemoryRecorder) RecordChecklistAck(record map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checklistAcks = append(r.checklistAcks, record)
}

func (r *MemoryRecorder) RecordDskyEntry(record map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dskyEntries = append(r.dskyEntries, record)
}

func (r *MemoryRecorder) RecordPanelControl(record map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.panelControls = append(r.panelControls, record)
}

// Stats returns the current call counts.
func (r *MemoryRecorder) Stats() RecorderStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RecorderStats{
		Checklist:    len(r.checklistAcks),
		DskyEntry:    len(r.dskyEntries),
		PanelControl: len(r.panelControls),
	}
}

// FileRecorder appends every recorded intent, msgpack-encoded and
// tagged with its kind, to a single replay file.
type FileRecorder struct {
	mu   sync.Mutex
	path string
}

func NewFileRecorder(path string) *FileRecorder {
	return &FileRecorder{path: path}
}

type replayEntry struct {
	Kind   string         `msgpack:"kind"`
	Record map[string]any `msgpack:"record"`
}

func (r *FileRecorder) append(kind string, record map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	encoded, err := msgpack.Marshal(replayEntry{Kind: kind, Record: record})
	if err != nil {
		return
	}
	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	f.Write(encoded)
	f.Write([]byte{'\n'})
}

func (r *FileRecorder) RecordChecklistAck(record map[string]any) { r.append("checklist_ack", record) }
func (r *FileRecorder) RecordDskyEntry(record map[string]any)    { r.append("dsky_entry", record) }
func (r *FileRecorder) RecordPanelControl(record map[string]any) { r.append("panel_control", record) }
