// Package integration provides embedded shell integration snippets.
package integration

import (
	"bytes"
	_ "embed"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"
)

// ZshFzf contains the zsh shell integration script with fzf support.
// It defines sizer-pick, which lists the saved ranking in fzf and deletes
// the selected file by its rank.
//
//go:embed zsh-fzf.sh
var ZshFzf string

// Render renders the integration script for the zsh found in PATH and the
// running sizer binary.
func Render() (string, error) {
	zsh, err := exec.LookPath("zsh")
	if err != nil {
		return "", err
	}

	binary, err := os.Executable()
	if err != nil {
		binary = "sizer"
	}

	return RenderWith(zsh, binary)
}

// RenderWith renders the integration script with explicit zsh and sizer paths.
func RenderWith(zsh, binary string) (string, error) {
	tmpl, err := template.New("zsh-fzf").Parse(ZshFzf)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any{
		"ZSH":    filepath.ToSlash(zsh),
		"Binary": filepath.ToSlash(binary),
	}); err != nil {
		return "", err
	}

	return buf.String(), nil
}
