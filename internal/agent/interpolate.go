package agent

import (
	"fmt"
	"math"

	"github.com/osteele/liquid"

	"github.com/hihouhou/huginn-tts-agent/internal/config"
)

var engine = liquid.NewEngine()

// Option is an agent option rendered as a Liquid template against the
// payload of the event being handled.
type Option struct {
	name string
	tmpl *liquid.Template
}

// ParseOption parses the Liquid source of the named option.
func ParseOption(name, source string) (*Option, error) {
	tmpl, err := engine.ParseString(source)
	if err != nil {
		return nil, &config.ValidationError{Problems: []string{fmt.Sprintf("%s is not a valid template: %v", name, err)}}
	}
	return &Option{name: name, tmpl: tmpl}, nil
}

// Render renders the option with the payload fields as top-level variables.
// Undefined variables render as empty strings.
func (o *Option) Render(payload map[string]any) (string, error) {
	out, err := o.tmpl.RenderString(bindings(payload))
	if err != nil {
		return "", &config.ValidationError{Problems: []string{fmt.Sprintf("%s could not be rendered: %v", o.name, err)}}
	}
	return out, nil
}

func bindings(payload map[string]any) liquid.Bindings {
	b := make(liquid.Bindings, len(payload))
	for k, v := range payload {
		b[k] = normalize(v)
	}
	return b
}

// normalize turns whole JSON numbers into integers so they render as
// 1234567 rather than 1.234567e+06.
func normalize(v any) any {
	switch v := v.(type) {
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			return int64(v)
		}
		return v
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = normalize(e)
		}
		return out
	default:
		return v
	}
}
