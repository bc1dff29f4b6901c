// Package sample fabricates schema-conformant events for an OCSF event
// class, for documentation, UI previews and exercising downstream mappers.
package sample

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/ocsf"
)

// ErrRequiredCycle is returned when required attributes form a loop, so no
// finite event can satisfy the schema.
var ErrRequiredCycle = errors.New("required attribute cycle")

// maxRecommendedDepth stops optional expansion of recommended object
// attributes in deeply nested schemas.
const maxRecommendedDepth = 4

// Options controls what a Generator emits.
type Options struct {
	// IncludeRecommended adds Recommended attributes alongside Required ones.
	IncludeRecommended bool
	// Seed makes output reproducible. Zero picks a random seed.
	Seed int64
}

// Generator builds sample events from one Graph. It is not safe for
// concurrent use.
type Generator struct {
	graph *ocsf.Graph
	faker *gofakeit.Faker
	opts  Options
}

// New creates a Generator.
func New(g *ocsf.Graph, opts Options) *Generator {
	return &Generator{
		graph: g,
		faker: gofakeit.New(opts.Seed),
		opts:  opts,
	}
}

// Event returns a sample event for the class with the given caption.
func (g *Generator) Event(caption string) (map[string]any, error) {
	class, err := g.graph.Class(caption)
	if err != nil {
		return nil, err
	}

	ancestors := map[string]bool{class.Name: true}
	event, err := g.object(&class.ObjectDefinition, "", ancestors, 0)
	if err != nil {
		return nil, fmt.Errorf("event class %q: %w", caption, err)
	}
	return event, nil
}

func (g *Generator) object(obj *ocsf.ObjectDefinition, path string, ancestors map[string]bool, depth int) (map[string]any, error) {
	out := make(map[string]any)

	for _, name := range obj.AttributeNames() {
		attr := obj.Attributes[name]
		if !g.wanted(attr, depth) {
			continue
		}
		attrPath := name
		if path != "" {
			attrPath = path + "." + name
		}

		var value any
		if attr.IsObject() {
			child, err := g.graph.ResolveObject(obj.Name, attr)
			if err != nil {
				return nil, err
			}
			if ancestors[child.Name] {
				if attr.IsRequired() {
					return nil, fmt.Errorf("%w: %s refers back to %q", ErrRequiredCycle, attrPath, child.Name)
				}
				continue
			}

			ancestors[child.Name] = true
			nested, err := g.object(child, attrPath, ancestors, depth+1)
			delete(ancestors, child.Name)
			if err != nil {
				return nil, err
			}
			value = nested
		} else {
			value = g.scalar(attr)
		}

		if attr.IsArray {
			value = []any{value}
		}
		out[name] = value
	}

	return out, nil
}

func (g *Generator) wanted(attr ocsf.Attribute, depth int) bool {
	switch attr.Requirement {
	case ocsf.RequirementRequired:
		return true
	case ocsf.RequirementRecommended:
		return g.opts.IncludeRecommended && (!attr.IsObject() || depth < maxRecommendedDepth)
	default:
		return false
	}
}

func (g *Generator) scalar(attr ocsf.Attribute) any {
	if len(attr.Enum) > 0 {
		e := attr.Enum[g.faker.Number(0, len(attr.Enum)-1)]
		if n, err := strconv.Atoi(e.Name); err == nil {
			return n
		}
		return e.Name
	}

	f := g.faker
	switch attr.Type {
	case "ip_t":
		return f.IPv4Address()
	case "hostname_t":
		return f.DomainName()
	case "email_t":
		return f.Email()
	case "uuid_t":
		return f.UUID()
	case "url_t":
		return f.URL()
	case "mac_t":
		return f.MacAddress()
	case "port_t":
		return f.Number(1024, 65535)
	case "timestamp_t":
		return f.DateRange(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)).UnixMilli()
	case "datetime_t":
		return f.Date().UTC().Format(time.RFC3339)
	case "boolean_t":
		return f.Bool()
	case "float_t":
		return f.Float64Range(0, 100)
	case "json_t":
		return map[string]any{f.Word(): f.Word()}
	case "username_t":
		return f.Username()
	case "file_name_t":
		return f.RandomString(fileNames)
	case "file_path_t":
		return f.RandomString(filePaths)
	case "process_name_t":
		return f.RandomString(processNames)
	case "integer_t", "long_t":
		return g.integer(attr.Name)
	}
	return g.text(attr.Name)
}

var (
	fileNames    = []string{"malware.exe", "script.sh", "config.yaml", "credentials.txt", "id_rsa", "passwd"}
	filePaths    = []string{"/etc/passwd", "/var/log/auth.log", "/tmp/malware.sh", `C:\Windows\System32\cmd.exe`, "/usr/bin/wget"}
	processNames = []string{"sshd", "bash", "python3", "nginx", "powershell.exe", "cmd.exe", "svchost.exe"}
	cmdLines     = []string{"/usr/sbin/sshd -D", "cmd.exe /c whoami", "powershell.exe -ExecutionPolicy Bypass -File run.ps1", "/bin/bash -c id"}
)

func (g *Generator) integer(name string) int {
	switch {
	case name == "pid" || strings.HasSuffix(name, "_pid"):
		return g.faker.Number(1, 65535)
	case strings.Contains(name, "port"):
		return g.faker.Number(1024, 65535)
	case strings.Contains(name, "size") || strings.Contains(name, "bytes"):
		return g.faker.Number(1024, 10*1024*1024)
	case strings.HasSuffix(name, "_id"):
		return g.faker.Number(0, 6)
	default:
		return g.faker.Number(0, 1000)
	}
}

func (g *Generator) text(name string) string {
	f := g.faker
	switch {
	case name == "uid" || strings.HasSuffix(name, "_uid"):
		return f.UUID()
	case name == "version":
		return f.AppVersion()
	case strings.Contains(name, "vendor"):
		return f.Company()
	case strings.Contains(name, "hostname"):
		return f.DomainName()
	case name == "ip" || strings.HasSuffix(name, "_ip"):
		return f.IPv4Address()
	case name == "cmd_line":
		return f.RandomString(cmdLines)
	case name == "path":
		return f.RandomString(filePaths)
	case name == "message":
		return f.Sentence(8)
	case name == "name":
		return f.AppName()
	default:
		return f.Word()
	}
}
