package page

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

type SettingsData struct {
	Backend       string
	DataDir       string
	Key           string
	MaxImageBytes int
	TaskCount     int
}

// Settings is a read-only summary of the running configuration.
func Settings(d SettingsData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<section class="panel"><h2>Settings</h2><dl class="settings">`)
		setting(hw, "Storage backend", d.Backend)
		setting(hw, "Data directory", d.DataDir)
		setting(hw, "Storage key", d.Key)
		setting(hw, "Image limit", strconv.Itoa(d.MaxImageBytes)+" bytes")
		setting(hw, "Stored tasks", strconv.Itoa(d.TaskCount))
		hw.raw(`</dl><p class="hint">Change these in taskflow.yml or TASKFLOW_* environment variables.</p></section>`)
		return hw.err
	})
}

func setting(hw *htmlWriter, label, value string) {
	hw.raw(`<dt>`)
	hw.text(label)
	hw.raw(`</dt><dd>`)
	hw.text(value)
	hw.raw(`</dd>`)
}
