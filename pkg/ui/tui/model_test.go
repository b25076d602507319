package tui

import (
	"errors"
	"testing"
)

func TestModel(t *testing.T) {
	model := NewModel()

	// Test starting operations
	model.StartOperation("user_videos", "somecreator")
	model.StartOperation("hashtag_videos", "cats")

	if len(model.operations) != 2 {
		t.Errorf("Expected 2 operations, got %d", len(model.operations))
	}
	active := model.GetActiveOperations()
	if len(active) != 2 {
		t.Errorf("Expected 2 active operations, got %d", len(active))
	}

	// Test completing an operation
	model.CompleteOperation("user_videos", "somecreator", "@somecreator.csv", 50)
	if model.completedOps != 1 {
		t.Errorf("Expected 1 completed operation, got %d", model.completedOps)
	}
	if model.totalRows != 50 {
		t.Errorf("Expected 50 total rows, got %d", model.totalRows)
	}
	op := model.operations[opKey("user_videos", "somecreator")]
	if op.File != "@somecreator.csv" || op.State != OperationCompleted {
		t.Errorf("Completed operation not recorded: %+v", op)
	}

	// Test failing an operation
	model.FailOperation("hashtag_videos", "cats", errors.New("listing blocked"))
	if model.failedOps != 1 {
		t.Errorf("Expected 1 failed operation, got %d", model.failedOps)
	}
	if len(model.GetActiveOperations()) != 0 {
		t.Errorf("Expected 0 active operations, got %d", len(model.GetActiveOperations()))
	}

	finished := model.GetFinishedOperations()
	if len(finished) != 2 {
		t.Errorf("Expected 2 finished operations, got %d", len(finished))
	}

	// Test log messages
	model.AddLogMessage("INFO", "Test message")
	if len(model.logMessages) != 1 {
		t.Errorf("Expected 1 log message, got %d", len(model.logMessages))
	}
}

func TestModelProgress(t *testing.T) {
	model := NewModel()

	if model.GetProgress() != 0 {
		t.Errorf("Expected zero progress on empty model, got %f", model.GetProgress())
	}

	model.SetPlannedJobs(4)
	model.StartOperation("user_videos", "a")
	model.CompleteOperation("user_videos", "a", "@a.csv", 10)
	model.StartOperation("user_videos", "b")
	model.FailOperation("user_videos", "b", errors.New("boom"))

	if got := model.GetProgress(); got != 0.5 {
		t.Errorf("GetProgress() = %f, expected 0.5", got)
	}
}

func TestCompleteWithoutStart(t *testing.T) {
	model := NewModel()

	// Batch results can arrive for operations the TUI never saw start
	model.CompleteOperation("trending", "", "foryou.csv", 30)

	if model.completedOps != 1 {
		t.Errorf("Expected 1 completed operation, got %d", model.completedOps)
	}
	if len(model.operationOrder) != 1 {
		t.Errorf("Expected operation to be registered, got %d entries", len(model.operationOrder))
	}
}

func TestOpKey(t *testing.T) {
	if opKey("trending", "") != "trending:" {
		t.Errorf("opKey(trending, \"\") = %s", opKey("trending", ""))
	}
	if opKey("user_videos", "somecreator") != "user_videos:somecreator" {
		t.Errorf("unexpected key %s", opKey("user_videos", "somecreator"))
	}
}
