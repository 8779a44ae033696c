package config

import (
	"errors"
	"fmt"
	"strings"
)

// Problems collects invalid settings for a single report.
type Problems []string

func (p *Problems) NonEmpty(value, envName string) {
	if strings.TrimSpace(value) == "" {
		*p = append(*p, envName+" is required")
	}
}

func (p *Problems) NonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		*p = append(*p, envName+" is required")
	}
}

func (p *Problems) MinBytes(value []byte, n int, envName string) {
	if len(value) > 0 && len(value) < n {
		*p = append(*p, fmt.Sprintf("%s must be at least %d bytes", envName, n))
	}
}

func (p *Problems) OneOf(value, envName string, allowed ...string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	*p = append(*p, fmt.Sprintf("%s=%q must be one of %s", envName, value, strings.Join(allowed, ", ")))
}

func (p *Problems) Positive(value int, envName string) {
	if value <= 0 {
		*p = append(*p, envName+" must be positive")
	}
}

// Err joins the collected problems, or returns nil when there are none.
func (p Problems) Err() error {
	if len(p) == 0 {
		return nil
	}
	return errors.New("invalid configuration: " + strings.Join(p, "; "))
}
