// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package orei

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// AnomalyType classifies a problem found in an outgoing command
type AnomalyType int

const (
	ANOMALY_EMPTY_COMMAND AnomalyType = iota
	ANOMALY_MALFORMED_COMMAND
	ANOMALY_OUT_OF_RANGE
)

// ValidationError describes one problem with a command
type ValidationError struct {
	Type    AnomalyType
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	return v.Message
}

type argRange struct {
	name     string
	min, max int
}

type setRule struct {
	prefix  string
	pattern *regexp.Regexp
	args    []argRange
}

// Longer prefixes first so "s output audio vol" is not taken for
// "s output audio".
var setRules = []setRule{
	{"power ", regexp.MustCompile(`^power (\d+)$`), []argRange{{"state", 0, 1}}},
	{"s output audio vol ", regexp.MustCompile(`^s output audio vol (\d+)$`), []argRange{{"volume", VOLUME_MIN, VOLUME_MAX}}},
	{"s output audio mute ", regexp.MustCompile(`^s output audio mute (\d+)$`), []argRange{{"mute", 0, 1}}},
	{"s output audio ", regexp.MustCompile(`^s output audio (\d+)$`), []argRange{{"source", AUDIO_FOLLOW_WINDOW, AUDIO_SOURCE_MAX}}},
	{"s output res ", regexp.MustCompile(`^s output res (\d+)$`), []argRange{{"resolution", RESOLUTION_MIN, RESOLUTION_MAX}}},
	{"s output hdcp ", regexp.MustCompile(`^s output hdcp (\d+)$`), []argRange{{"hdcp", int(HDCP_1_4), int(HDCP_OFF)}}},
	{"s multiview ", regexp.MustCompile(`^s multiview (\d+)$`), []argRange{{"mode", 1, 5}}},
	{"s window ", regexp.MustCompile(`^s window (\d+) in (\d+)$`), []argRange{{"window", 1, 4}, {"input", 1, 4}}},
	{"s PIP position ", regexp.MustCompile(`^s PIP position (\d+)$`), []argRange{{"position", 1, 4}}},
	{"s PIP size ", regexp.MustCompile(`^s PIP size (\d+)$`), []argRange{{"size", 1, 3}}},
	{"s PBP mode ", regexp.MustCompile(`^s PBP mode (\d+)$`), []argRange{{"sub-mode", 1, 2}}},
	{"s PBP aspect ", regexp.MustCompile(`^s PBP aspect (\d+)$`), []argRange{{"aspect", 1, 2}}},
	{"s triple mode ", regexp.MustCompile(`^s triple mode (\d+)$`), []argRange{{"sub-mode", 1, 2}}},
	{"s triple aspect ", regexp.MustCompile(`^s triple aspect (\d+)$`), []argRange{{"aspect", 1, 2}}},
	{"s quad mode ", regexp.MustCompile(`^s quad mode (\d+)$`), []argRange{{"sub-mode", 1, 3}}},
	{"s quad aspect ", regexp.MustCompile(`^s quad aspect (\d+)$`), []argRange{{"aspect", 1, 2}}},
}

// ValidateCommand checks the arguments of known set commands against the
// ranges the device accepts. Commands it does not recognise pass unchecked.
// Returns a slice of validation errors (empty if the command looks valid)
func ValidateCommand(cmd string) []ValidationError {
	errors := []ValidationError{}

	body := strings.TrimSuffix(strings.TrimSpace(cmd), TERMINATOR)
	if body == "" {
		return []ValidationError{{
			Type:    ANOMALY_EMPTY_COMMAND,
			Message: "Empty command",
			Details: map[string]interface{}{},
		}}
	}

	for _, rule := range setRules {
		if !strings.HasPrefix(body, rule.prefix) {
			continue
		}

		m := rule.pattern.FindStringSubmatch(body)
		if m == nil {
			return []ValidationError{{
				Type:    ANOMALY_MALFORMED_COMMAND,
				Message: fmt.Sprintf("Malformed command %q", cmd),
				Details: map[string]interface{}{"command": cmd, "expected_args": len(rule.args)},
			}}
		}

		for i, arg := range rule.args {
			v, err := strconv.Atoi(m[i+1])
			if err != nil || v < arg.min || v > arg.max {
				errors = append(errors, ValidationError{
					Type:    ANOMALY_OUT_OF_RANGE,
					Message: fmt.Sprintf("Invalid %s=%s (range %d-%d)", arg.name, m[i+1], arg.min, arg.max),
					Details: map[string]interface{}{arg.name: m[i+1], "min": arg.min, "max": arg.max},
				})
			}
		}
		return errors
	}

	return errors
}
