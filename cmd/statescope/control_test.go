// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"maps"
	"testing"
	"time"
)

func TestParseInterval(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{input: "100ms", want: 100 * time.Millisecond},
		{input: "1s", want: time.Second},
		{input: "2m30s", want: 2*time.Minute + 30*time.Second},
		{input: "250", want: 250 * time.Millisecond},
		{input: "fast", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, test := range tests {
		got, err := parseInterval(test.input)
		if test.wantErr {
			if err == nil {
				t.Errorf("parseInterval(%q) = %v, want error", test.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseInterval(%q): %v", test.input, err)
			continue
		}
		if got != test.want {
			t.Errorf("parseInterval(%q) = %v, want %v", test.input, got, test.want)
		}
	}
}

func TestParseAux(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		want    map[string]string
		wantErr bool
	}{
		{name: "empty", args: nil, want: nil},
		{name: "single pair", args: []string{"bank=aux"}, want: map[string]string{"bank": "aux"}},
		{
			name: "multiple pairs",
			args: []string{"addr=0300", "origin=operator"},
			want: map[string]string{"addr": "0300", "origin": "operator"},
		},
		{name: "empty value", args: []string{"note="}, want: map[string]string{"note": ""}},
		{name: "value with equals", args: []string{"expr=a=b"}, want: map[string]string{"expr": "a=b"}},
		{name: "missing equals", args: []string{"justakey"}, wantErr: true},
		{name: "empty key", args: []string{"=value"}, wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := parseAux(test.args)
			if test.wantErr {
				if err == nil {
					t.Fatalf("parseAux(%v) = %v, want error", test.args, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseAux(%v): %v", test.args, err)
			}
			if !maps.Equal(got, test.want) {
				t.Errorf("parseAux(%v) = %v, want %v", test.args, got, test.want)
			}
		})
	}
}
