package decode

import "errors"

var (
	errMissingArchivePath = errors.New("decode: archive path is required")
	errEmptyArchive       = errors.New("decode: archive has no records")
	errNoSelectedRecords  = errors.New("decode: no records selected after filtering")
	errInvalidConstraint  = errors.New("decode: invalid client constraint")
	errClientConstraint   = errors.New("decode: client version does not satisfy constraint")
	errInvalidClient      = errors.New("decode: invalid client version")
	errDecodeFailed       = errors.New("decode: records failed to decode")
	errProfile            = errors.New("decode: profile")
	errSaveArchive        = errors.New("decode: save decoded records")
)
