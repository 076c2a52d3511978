package errors

import "errors"

var (
	ErrNotAuthorized         = errors.New("weight registry: caller is not the registry owner")
	ErrInvalidMemberInput    = errors.New("weight registry: invalid member input")
	ErrInvalidOrgInput       = errors.New("weight registry: invalid org input")
	ErrMemberExists          = errors.New("weight registry: member already registered")
	ErrMemberNotFound        = errors.New("weight registry: member not found")
	ErrOrgExists             = errors.New("weight registry: org member already registered")
	ErrOrgNotFound           = errors.New("weight registry: org member not found")
	ErrOrgAllocationOverflow = errors.New("weight registry: active org allocations exceed 1000000 ppm")
	ErrMalformedImportBatch  = errors.New("weight registry: import batch length is not a multiple of the record size")
	ErrInvalidCutoff         = errors.New("weight registry: cutoff period out of range")
)
