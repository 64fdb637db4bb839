package services

import (
	"net/url"
	"strconv"
	"strings"
)

// Redacted replaces credential values wherever a URL is logged
const Redacted = "REDACTED"

var credentialParams = map[string]bool{
	"password":        true,
	"second_password": true,
	"api_code":        true,
	"priv":            true,
}

// Param is a single query string parameter
type Param struct {
	Name  string
	Value string
}

// Params is an insertion-ordered query string. Empty values are never
// added, so optional parameters that were not supplied do not show up on
// the wire at all.
type Params []Param

// Set appends name=value unless value is empty
func (p Params) Set(name, value string) Params {
	if value == "" {
		return p
	}
	return append(p, Param{Name: name, Value: value})
}

// SetInt appends name=value unless value is zero
func (p Params) SetInt(name string, value int64) Params {
	if value == 0 {
		return p
	}
	return p.MustSetInt(name, value)
}

// MustSetInt appends name=value even when value is zero
func (p Params) MustSetInt(name string, value int64) Params {
	return append(p, Param{Name: name, Value: strconv.FormatInt(value, 10)})
}

// Get returns the first value stored under name
func (p Params) Get(name string) (string, bool) {
	for _, param := range p {
		if param.Name == name {
			return param.Value, true
		}
	}
	return "", false
}

// Encode renders p as a form-encoded query string in insertion order
func (p Params) Encode() string {
	var b strings.Builder
	for i, param := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(param.Name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(param.Value))
	}
	return b.String()
}

// Redact returns a copy of p with every credential value masked
func (p Params) Redact() Params {
	if len(p) == 0 {
		return p
	}
	out := make(Params, len(p))
	for i, param := range p {
		if credentialParams[param.Name] {
			param.Value = Redacted
		}
		out[i] = param
	}
	return out
}
