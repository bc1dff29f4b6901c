package sample

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telhawk-systems/ocsf-mapper/common/logging"
	"github.com/telhawk-systems/ocsf-mapper/schema/internal/testschema"
	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/conformance"
	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/ocsf"
)

func TestEvent_RequiredOnly(t *testing.T) {
	event, err := New(testschema.Graph(), Options{Seed: 42}).Event(testschema.ProcessActivity)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"activity_id", "actor", "metadata", "process", "time"}, keys(event))

	process := event["process"].(map[string]any)
	assert.Equal(t, []string{"pid"}, keys(process))
	pid := process["pid"].(int)
	assert.GreaterOrEqual(t, pid, 1)

	assert.Contains(t, []int{0, 1, 2, 99}, event["activity_id"])

	metadata := event["metadata"].(map[string]any)
	product := metadata["product"].(map[string]any)
	assert.NotEmpty(t, product["vendor_name"])
}

func TestEvent_IncludeRecommended(t *testing.T) {
	event, err := New(testschema.Graph(), Options{Seed: 7, IncludeRecommended: true}).Event(testschema.ProcessActivity)
	require.NoError(t, err)

	assert.Contains(t, event, "message")
	process := event["process"].(map[string]any)
	assert.Contains(t, process, "name")
	assert.NotContains(t, process, "parent_process")
}

func TestEvent_PassesValidation(t *testing.T) {
	g := testschema.Graph()
	v := conformance.New(g, conformance.WithLogger(logging.Discard().Logger))

	for seed := int64(1); seed <= 25; seed++ {
		for _, recommended := range []bool{false, true} {
			event, err := New(g, Options{Seed: seed, IncludeRecommended: recommended}).Event(testschema.ProcessActivity)
			require.NoError(t, err)

			report := v.Validate(testschema.ProcessActivity, event)
			require.True(t, report.Passed, "seed %d: %s", seed, report.Summary())
		}
	}
}

func TestEvent_Reproducible(t *testing.T) {
	g := testschema.Graph()
	first, err := New(g, Options{Seed: 99, IncludeRecommended: true}).Event(testschema.ProcessActivity)
	require.NoError(t, err)
	second, err := New(g, Options{Seed: 99, IncludeRecommended: true}).Event(testschema.ProcessActivity)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEvent_Arrays(t *testing.T) {
	class := &ocsf.EventClass{
		ObjectDefinition: ocsf.ObjectDefinition{
			Name:    "group_management",
			Caption: "Group Management",
			Attributes: map[string]ocsf.Attribute{
				"groups": {Name: "groups", Type: "object_t", ObjectType: "group", IsArray: true, Requirement: ocsf.RequirementRequired},
				"tags":   {Name: "tags", Type: "string_t", IsArray: true, Requirement: ocsf.RequirementRequired},
				"src_ip": {Name: "src_ip", Type: "ip_t", Requirement: ocsf.RequirementRequired},
			},
		},
		UID: 3006,
	}
	group := &ocsf.ObjectDefinition{
		Name: "group",
		Attributes: map[string]ocsf.Attribute{
			"name": {Name: "name", Type: "string_t", Requirement: ocsf.RequirementRequired},
		},
	}
	g, err := ocsf.NewGraph("1.1.0", []*ocsf.EventClass{class}, []*ocsf.ObjectDefinition{group})
	require.NoError(t, err)

	event, err := New(g, Options{Seed: 1}).Event("Group Management")
	require.NoError(t, err)

	groups, ok := event["groups"].([]any)
	require.True(t, ok)
	require.Len(t, groups, 1)
	assert.Contains(t, groups[0], "name")

	tags, ok := event["tags"].([]any)
	require.True(t, ok)
	assert.Len(t, tags, 1)

	assert.Regexp(t, `^\d+\.\d+\.\d+\.\d+$`, event["src_ip"])

	report := conformance.New(g, conformance.WithLogger(logging.Discard().Logger)).Validate("Group Management", event)
	assert.True(t, report.Passed, report.Summary())
}

func TestEvent_RequiredCycle(t *testing.T) {
	class := &ocsf.EventClass{
		ObjectDefinition: ocsf.ObjectDefinition{
			Name:    "loop",
			Caption: "Loop",
			Attributes: map[string]ocsf.Attribute{
				"node": {Name: "node", ObjectType: "node", Requirement: ocsf.RequirementRequired},
			},
		},
	}
	node := &ocsf.ObjectDefinition{
		Name: "node",
		Attributes: map[string]ocsf.Attribute{
			"next": {Name: "next", ObjectType: "node", Requirement: ocsf.RequirementRequired},
		},
	}
	g, err := ocsf.NewGraph("1.1.0", []*ocsf.EventClass{class}, []*ocsf.ObjectDefinition{node})
	require.NoError(t, err)

	_, err = New(g, Options{}).Event("Loop")
	assert.ErrorIs(t, err, ErrRequiredCycle)
	assert.Contains(t, err.Error(), "node.next")
}

func TestEvent_Errors(t *testing.T) {
	gen := New(testschema.Graph(), Options{})

	_, err := gen.Event("Nope")
	assert.ErrorIs(t, err, ocsf.ErrUnknownEventClass)

	_, err = gen.Event(testschema.BrokenActivity)
	assert.ErrorIs(t, err, ocsf.ErrUnresolvedObjectType)
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
