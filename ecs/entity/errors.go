package entity

import "errors"

var (
	ErrMissingReference = errors.New("entity: missing reference")
	ErrNoRigidBody      = errors.New("entity: passenger has no rigid body")
	ErrDuplicateName    = errors.New("entity: duplicate scene name")
	ErrInvalidParent    = errors.New("entity: invalid parent")
	ErrUnknownMode      = errors.New("entity: unknown transport mode")
)
