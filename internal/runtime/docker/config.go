package docker

import "github.com/school-grader/school-grader/internal/domain/grading"

const (
	defaultImage   = "python:3.12-alpine"
	defaultWorkdir = "/tmp"
)

// Config describes how to create a container-backed engine for Python
// scripts.
type Config struct {
	// Image is the container image carrying the interpreter.
	Image string
	// Workdir is the directory inside the container the script is copied to.
	Workdir string
	// DefaultLimits apply when a script carries no limits of its own.
	DefaultLimits grading.RunLimits
}

func (c Config) withDefaults() Config {
	if c.Image == "" {
		c.Image = defaultImage
	}
	if c.Workdir == "" {
		c.Workdir = defaultWorkdir
	}
	if c.DefaultLimits.TimeLimit <= 0 {
		c.DefaultLimits.TimeLimit = grading.DefaultTimeLimit
	}
	return c
}
