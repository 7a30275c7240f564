// Package labels defines the classification label scheme used to annotate
// audio events. A scheme has a fixed number of classes, the last index is the
// undefined catch-all class, and every index maps to a class name supplied by
// a Provider.
package labels

import (
	"fmt"
	"maps"
	"sort"

	"github.com/pans/seld-go/internal/errors"
)

// Provider supplies the class-name mapping for a label scheme. The returned
// mapping must be total over [0, numClasses) and stable across calls within a
// process lifetime.
type Provider interface {
	ClassNames(numClasses int) (map[int]string, error)
}

// Scheme is the immutable label vocabulary of an experiment.
type Scheme struct {
	NumClasses       int // total class count, including the undefined class
	UndefinedClassID int // always NumClasses-1
	names            map[int]string
}

// New builds a Scheme from the provider's class-name mapping. The mapping is
// verified to cover every index in [0, numClasses) with no gaps; a partial
// mapping fails the whole load rather than producing a scheme with holes.
func New(numClasses int, provider Provider) (*Scheme, error) {
	if numClasses < 1 {
		return nil, errors.Newf("label scheme needs at least 1 class, got %d", numClasses).
			Component("labels").
			Category(errors.CategoryValidation).
			Build()
	}

	names, err := provider.ClassNames(numClasses)
	if err != nil {
		return nil, errors.New(fmt.Errorf("class name lookup failed: %w", err)).
			Component("labels").
			Category(errors.CategoryLabelLoad).
			Context("num_classes", numClasses).
			Build()
	}

	if missing := missingIndices(names, numClasses); len(missing) > 0 {
		return nil, errors.Newf("class name mapping is incomplete: %d of %d names present, missing indices %v",
			len(names), numClasses, missing).
			Component("labels").
			Category(errors.CategoryLabelLoad).
			Context("num_classes", numClasses).
			Context("missing_count", len(missing)).
			Build()
	}

	if len(names) > numClasses {
		return nil, errors.Newf("class name mapping has %d entries for %d classes", len(names), numClasses).
			Component("labels").
			Category(errors.CategoryLabelLoad).
			Context("num_classes", numClasses).
			Build()
	}

	scheme := &Scheme{
		NumClasses:       numClasses,
		UndefinedClassID: numClasses - 1,
		names:            make(map[int]string, numClasses),
	}
	maps.Copy(scheme.names, names)

	return scheme, nil
}

// missingIndices returns the sorted indices in [0, numClasses) absent from names.
func missingIndices(names map[int]string, numClasses int) []int {
	var missing []int
	for i := 0; i < numClasses; i++ {
		if _, ok := names[i]; !ok {
			missing = append(missing, i)
		}
	}
	sort.Ints(missing)
	return missing
}

// Name returns the class name for the given class ID.
func (s *Scheme) Name(classID int) (string, error) {
	name, ok := s.names[classID]
	if !ok {
		return "", errors.Newf("class ID %d out of range [0, %d)", classID, s.NumClasses).
			Component("labels").
			Category(errors.CategoryValidation).
			Build()
	}
	return name, nil
}

// Names returns a copy of the full index to name mapping.
func (s *Scheme) Names() map[int]string {
	namesCopy := make(map[int]string, len(s.names))
	maps.Copy(namesCopy, s.names)
	return namesCopy
}

// IsUndefined reports whether classID is the undefined catch-all class.
func (s *Scheme) IsUndefined(classID int) bool {
	return classID == s.UndefinedClassID
}
