package services

import "errors"

// Task errors
var (
	ErrTaskNotFound     = errors.New("task: not found")
	ErrTaskInvalidInput = errors.New("task: invalid input")
)

// Worker errors
var (
	ErrWorkerAlreadyRunning = errors.New("worker: already running")
	ErrShutdownTimeout      = errors.New("worker: shutdown timed out")
)

// Session errors
var (
	ErrSessionInvalidInput = errors.New("session: invalid input")
	ErrSessionNotFound     = errors.New("session: not found")
)

// Preference errors
var (
	ErrPreferenceInvalidInput = errors.New("preference: invalid input")
)

// Search errors
var (
	ErrSearchInvalidInput = errors.New("search: invalid input")
)

// Failure reasons recorded on tasks.
const (
	FailureEmptyResult = "empty result"
	FailureInterrupted = "interrupted by restart"
)
