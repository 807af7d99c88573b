package models

import "errors"

var (
	// ErrInvalidArgument marks empty or missing required input. No remote
	// call is made once it is raised.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAlreadyExists marks a duplicate title on add.
	ErrAlreadyExists = errors.New("document already exists")

	// ErrContextTooLarge is the completion service signalling that the
	// request does not fit the model context. ChatSession recovers from it
	// by evicting the oldest message and retrying.
	ErrContextTooLarge = errors.New("context too large for model")

	// ErrIndexWrite marks an embedding or upsert failure partway through
	// ingestion. The local list is left untouched; vectors already written
	// by the failed attempt are not rolled back.
	ErrIndexWrite = errors.New("vector index write failed")

	// ErrRetrieval wraps a service failure during prompt composition.
	ErrRetrieval = errors.New("retrieval failed")
)
