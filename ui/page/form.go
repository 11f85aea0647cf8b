package page

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// FormData fills the add/edit form. Field values are echoed back after a
// rejected submit so nothing typed is lost.
type FormData struct {
	Editing     bool
	Action      string
	Return      string
	Error       string
	Title       string
	Description string
	DueDate     string
	Priority    string
	Image       string
	// MaxImageBytes caps the encoded attachment. Zero hides the size hint.
	MaxImageBytes int
}

var priorityOptions = []struct{ value, label string }{
	{"low", "Low"},
	{"medium", "Medium"},
	{"high", "High"},
}

func TaskForm(d FormData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		heading, submit := "Add New Task", "Add Task"
		if d.Editing {
			heading, submit = "Edit Task", "Update Task"
		}
		priority := d.Priority
		if priority == "" {
			priority = "medium"
		}

		hw.raw(`<section class="panel form-panel"><h2>`)
		hw.text(heading)
		hw.raw(`</h2>`)
		if d.Error != "" {
			hw.raw(`<p class="form-error" role="alert">`)
			hw.text(d.Error)
			hw.raw(`</p>`)
		}
		hw.raw(`<form method="post" enctype="multipart/form-data" action="`)
		hw.text(d.Action)
		hw.raw(`"><input type="hidden" name="return" value="`)
		hw.text(d.Return)
		hw.raw(`">`)

		hw.raw(`<label for="title">Title *</label><input id="title" name="title" type="text" placeholder="Enter task title" value="`)
		hw.text(d.Title)
		hw.raw(`">`)

		hw.raw(`<label for="description">Description</label><textarea id="description" name="description" rows="3" placeholder="Enter task description">`)
		hw.text(d.Description)
		hw.raw(`</textarea>`)

		hw.raw(`<div class="row"><div><label for="dueDate">Due Date *</label><input id="dueDate" name="dueDate" type="date" value="`)
		hw.text(d.DueDate)
		hw.raw(`"></div><div><label for="priority">Priority</label><select id="priority" name="priority">`)
		for _, opt := range priorityOptions {
			hw.raw(`<option value="`)
			hw.text(opt.value)
			hw.raw(`"`)
			if opt.value == priority {
				hw.raw(` selected`)
			}
			hw.raw(`>`)
			hw.text(opt.label)
			hw.raw(`</option>`)
		}
		hw.raw(`</select></div></div>`)

		hw.raw(`<label>Image Attachment</label>`)
		if d.Image != "" {
			hw.raw(`<figure class="attachment"><img alt="Preview" src="`)
			hw.text(d.Image)
			hw.raw(`"></figure><label class="check-label"><input type="checkbox" name="remove_image" value="1"> Remove image</label>`)
		}
		hw.raw(`<input type="file" name="image" accept="image/*"><p class="hint">PNG, JPG, GIF`)
		if d.MaxImageBytes > 0 {
			hw.text(" up to " + uploadSize(d.MaxImageBytes))
		}
		hw.raw(`</p>`)

		hw.raw(`<div class="form-actions"><a class="btn" href="`)
		hw.text(returnOr(d.Return, "/"))
		hw.raw(`">Cancel</a><button type="submit" class="btn btn-primary">`)
		hw.text(submit)
		hw.raw(`</button></div></form></section>`)
		return hw.err
	})
}

// uploadSize is the largest raw file that still fits under an encoded
// limit, since base64 grows the payload by a third.
func uploadSize(encoded int) string {
	const (
		kib = 1024
		mib = 1024 * kib
	)
	raw := encoded / 4 * 3
	switch {
	case raw >= mib:
		return trimZeros(float64(raw)/mib) + "MB"
	case raw >= kib:
		return trimZeros(float64(raw)/kib) + "KB"
	default:
		return fmt.Sprintf("%d bytes", raw)
	}
}

func trimZeros(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
