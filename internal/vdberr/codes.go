// Package vdberr provides structured error handling for the vector database
// core. Every error the service layer returns is a *Error carrying a stable
// code and one of the five transport-agnostic kinds the spec defines.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: not_found
//   - 2XX: validation
//   - 3XX: conflict
//   - 4XX: busy
//   - 5XX: internal
package vdberr

// Kind classifies an error the way the service layer surfaces it to callers.
// Transport adapters map Kind to a status code; the core itself never does.
type Kind string

const (
	KindNotFound   Kind = "not_found"
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindBusy       Kind = "busy"
	KindInternal   Kind = "internal"
)

// Error codes organized by category.
const (
	// not_found (100-199)
	CodeLibraryNotFound  = "ERR_101_LIBRARY_NOT_FOUND"
	CodeDocumentNotFound = "ERR_102_DOCUMENT_NOT_FOUND"
	CodeChunkNotFound    = "ERR_103_CHUNK_NOT_FOUND"
	CodeIndexNotFound    = "ERR_104_INDEX_NOT_FOUND"

	// validation (200-299)
	CodeDimensionMismatch  = "ERR_201_DIMENSION_MISMATCH"
	CodeZeroVector         = "ERR_202_ZERO_VECTOR"
	CodeInvalidIndexConfig = "ERR_203_INVALID_INDEX_CONFIG"
	CodeInvalidK           = "ERR_204_INVALID_K"
	CodeEmptyQuery         = "ERR_205_EMPTY_QUERY"
	CodeInvalidField       = "ERR_206_INVALID_FIELD"
	CodeChunkExists        = "ERR_207_CHUNK_EXISTS"
	CodeImmutableField     = "ERR_208_IMMUTABLE_FIELD"

	// conflict (300-399)
	CodeVersionStale = "ERR_301_VERSION_STALE"

	// busy (400-499)
	CodeLockTimeout = "ERR_401_LOCK_TIMEOUT"

	// internal (500-599)
	CodeInternal         = "ERR_501_INTERNAL"
	CodeIndexFailed      = "ERR_502_INDEX_FAILED"
	CodeRepositoryDesync = "ERR_503_REPOSITORY_DESYNC"
)

// kindFromCode extracts the Kind from a code's numeric prefix.
func kindFromCode(code string) Kind {
	if len(code) < 5 {
		return KindInternal
	}
	switch code[4] {
	case '1':
		return KindNotFound
	case '2':
		return KindValidation
	case '3':
		return KindConflict
	case '4':
		return KindBusy
	default:
		return KindInternal
	}
}

// retryableKind reports whether the caller retrying the same operation
// could plausibly succeed.
func retryableKind(k Kind) bool {
	return k == KindConflict || k == KindBusy
}
