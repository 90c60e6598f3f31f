package smf

import "errors"

var (
	// ErrBadCookie is returned when no MThd or MTrk chunk cookie is found
	// where one is required.
	ErrBadCookie = errors.New("chunk cookie not found")

	// ErrTruncatedChunk is returned when a chunk claims more bytes than the
	// input provides.
	ErrTruncatedChunk = errors.New("truncated chunk")

	// ErrUnknownSMPTEFPS is returned when the division word carries an
	// unrecognized SMPTE frame rate.
	ErrUnknownSMPTEFPS = errors.New("unknown SMPTE frame rate")

	// ErrInvalidDivision is returned when a time basis is constructed with
	// an out-of-range field.
	ErrInvalidDivision = errors.New("invalid division")

	// ErrTrackOutOfRange is returned when a caller supplies a track index
	// outside the sequence.
	ErrTrackOutOfRange = errors.New("track index out of range")

	// ErrInvalidKey is returned when a key number is outside 0..127.
	ErrInvalidKey = errors.New("key number out of range")

	// ErrInvalidVelocity is returned when a velocity is outside 0..127.
	ErrInvalidVelocity = errors.New("velocity out of range")

	// ErrInvalidChannel is returned when a channel is outside 0..15.
	ErrInvalidChannel = errors.New("channel out of range")

	// ErrInvalidData is returned when a data byte is outside 0..127 or a
	// payload cannot be encoded losslessly.
	ErrInvalidData = errors.New("data byte out of range")
)
