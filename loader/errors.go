package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
)

// Kind classifies why a load failed.
type Kind int

const (
	// KindGeneric is any failure not covered by the other kinds.
	KindGeneric Kind = iota
	// KindMissingFile means a local input file does not exist.
	KindMissingFile
	// KindMissingDependency means the source needs a driver this binary lacks.
	KindMissingDependency
	// KindRemoteFetch means a network source could not be fetched.
	KindRemoteFetch
)

// String returns the metric label of the kind.
func (k Kind) String() string {
	switch k {
	case KindMissingFile:
		return "missing_file"
	case KindMissingDependency:
		return "missing_dependency"
	case KindRemoteFetch:
		return "remote_fetch"
	default:
		return "generic"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

var (
	// ErrMissingFile indicates that a local input file could not be found.
	ErrMissingFile = errors.New("file not found")
	// ErrMissingDependency indicates that an optional driver is not compiled in.
	ErrMissingDependency = errors.New("optional dependency not available")
	// ErrRemoteFetch indicates that a remote source could not be retrieved.
	ErrRemoteFetch = errors.New("remote fetch failed")
	// ErrGenericLoad indicates any other load failure.
	ErrGenericLoad = errors.New("load failed")
)

func (k Kind) sentinel() error {
	switch k {
	case KindMissingFile:
		return ErrMissingFile
	case KindMissingDependency:
		return ErrMissingDependency
	case KindRemoteFetch:
		return ErrRemoteFetch
	default:
		return ErrGenericLoad
	}
}

// LoadError is the error returned by Loader.Load.
type LoadError struct {
	Kind   Kind
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Source, e.Kind.sentinel())
	}
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is matches the sentinel of the error's kind, so errors.Is(err,
// ErrMissingFile) holds for every missing-file LoadError.
func (e *LoadError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// newLoadError wraps err for source, classifying it when kind is not given.
func newLoadError(source string, err error) *LoadError {
	var le *LoadError
	if errors.As(err, &le) {
		return le
	}
	return &LoadError{Kind: Classify(err), Source: source, Err: err}
}

// Classify maps err onto the load failure taxonomy.
func Classify(err error) Kind {
	var le *LoadError
	switch {
	case err == nil:
		return KindGeneric
	case errors.As(err, &le):
		return le.Kind
	case errors.Is(err, ErrMissingFile), errors.Is(err, fs.ErrNotExist):
		return KindMissingFile
	case errors.Is(err, ErrMissingDependency):
		return KindMissingDependency
	case errors.Is(err, ErrRemoteFetch), errors.Is(err, context.DeadlineExceeded):
		return KindRemoteFetch
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return KindRemoteFetch
	}
	return KindGeneric
}

// -----------------------------------------------------------------------------
// Warnings
// -----------------------------------------------------------------------------

// Warning is the human readable notice shown in place of a table that could
// not be loaded.
type Warning struct {
	Kind    Kind
	Source  string
	Message string
	Err     error
}

func (w *Warning) Error() string { return w.Message }

func (w *Warning) Unwrap() error { return w.Err }

// warningFor phrases err the way the dashboard shows it.
func warningFor(src Source, err error) *Warning {
	kind := Classify(err)
	name := src.DisplayName()

	var msg string
	switch kind {
	case KindMissingFile:
		msg = fmt.Sprintf("Archivo '%s' no encontrado.", name)
	case KindMissingDependency:
		msg = fmt.Sprintf("La fuente '%s' requiere un controlador que no está disponible.", name)
	case KindRemoteFetch:
		msg = fmt.Sprintf("No se pudo cargar desde URL: %v", unwrapLoad(err))
	default:
		msg = fmt.Sprintf("Error al cargar los datos: %v", unwrapLoad(err))
	}
	return &Warning{Kind: kind, Source: src.String(), Message: msg, Err: err}
}

func unwrapLoad(err error) error {
	var le *LoadError
	if errors.As(err, &le) && le.Err != nil {
		return le.Err
	}
	return err
}
