package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	texttpl "text/template"
)

//go:embed templates/*
var templateFS embed.FS

// ResetVars feeds the reset OTP templates.
type ResetVars struct {
	Product  string
	FullName string
	Code     string
	Minutes  int
}

// Templates holds the parsed reset OTP bodies.
type Templates struct {
	ResetHTML *template.Template
	ResetTXT  *texttpl.Template
}

// LoadTemplates parses the embedded templates.
func LoadTemplates() (*Templates, error) {
	rh, err := template.ParseFS(templateFS, "templates/reset_otp.html")
	if err != nil {
		return nil, fmt.Errorf("parse reset html: %w", err)
	}
	rt, err := texttpl.ParseFS(templateFS, "templates/reset_otp.txt")
	if err != nil {
		return nil, fmt.Errorf("parse reset txt: %w", err)
	}
	return &Templates{ResetHTML: rh, ResetTXT: rt}, nil
}

// RenderReset returns the html and text bodies.
func (t *Templates) RenderReset(v ResetVars) (string, string, error) {
	var hb, tb bytes.Buffer
	if err := t.ResetHTML.Execute(&hb, v); err != nil {
		return "", "", err
	}
	if err := t.ResetTXT.Execute(&tb, v); err != nil {
		return "", "", err
	}
	return hb.String(), tb.String(), nil
}
