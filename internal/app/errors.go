package app

import (
	"errors"
	"fmt"
)

// ErrNotReady is returned when slicing before a mesh was loaded
var ErrNotReady = errors.New("no mesh loaded")

// LoadStage names the step of the load sequence that failed
type LoadStage string

const (
	StageFetch   LoadStage = "fetch"
	StageParse   LoadStage = "parse"
	StageMesh    LoadStage = "mesh"
	StageDisplay LoadStage = "display"
)

// LoadError reports a failed load
type LoadError struct {
	Stage  LoadStage
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %s: %v", e.Source, e.Stage, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// SliceError reports a failed slice at a Z position
type SliceError struct {
	Z   float64
	Err error
}

func (e *SliceError) Error() string {
	return fmt.Sprintf("slice at z=%g: %v", e.Z, e.Err)
}

func (e *SliceError) Unwrap() error {
	return e.Err
}
