package pdata

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/world"
	"gopkg.in/yaml.v3"
)

// DataCommand returns the /data command, which reads and changes the data of
// the player running it:
//
//	/data list
//	/data get <key>
//	/data set <key> <value>
//	/data remove <trait>
//
// Values are written in YAML, for example `[0, 1.5, 0]` for a velocity.
func DataCommand() cmd.Command {
	return cmd.New("data", "Reads and changes player data.", []string{"pdata"},
		dataList{}, dataGet{}, dataSet{}, dataRemove{})
}

// keyName is a command parameter listing the keys of the source's registry.
type keyName string

func (keyName) Type() string { return "key" }

func (keyName) Options(src cmd.Source) []string {
	h := Command(src)
	if h == nil {
		return nil
	}
	var out []string
	for _, t := range h.session.manager.registry.Traits() {
		for _, k := range t.Keys() {
			out = append(out, k.Name())
		}
	}
	slices.Sort(out)
	return out
}

// traitName is a command parameter listing the traits of the source's
// registry.
type traitName string

func (traitName) Type() string { return "trait" }

func (traitName) Options(src cmd.Source) []string {
	h := Command(src)
	if h == nil {
		return nil
	}
	var out []string
	for _, t := range h.session.manager.registry.Traits() {
		out = append(out, t.Name())
	}
	return out
}

type dataList struct {
	List cmd.SubCommand `cmd:"list"`
}

func (dataList) Run(src cmd.Source, o *cmd.Output, _ *world.Tx) {
	h := Command(src)
	if h == nil {
		o.Error("This command can only be run by players.")
		return
	}
	for _, m := range h.session.manager.registry.GetAll(h) {
		o.Print(formatManipulator(m))
	}
}

type dataGet struct {
	Get cmd.SubCommand `cmd:"get"`
	Key keyName        `cmd:"key"`
}

func (c dataGet) Run(src cmd.Source, o *cmd.Output, _ *world.Tx) {
	h := Command(src)
	if h == nil {
		o.Error("This command can only be run by players.")
		return
	}
	r := h.session.manager.registry
	key, t, ok := lookupKey(r, string(c.Key))
	if !ok {
		o.Errorf("Unknown key %s.", c.Key)
		return
	}
	m, ok := r.Get(h, t)
	if !ok {
		o.Errorf("You have no %s.", t.Name())
		return
	}
	v, _ := m.RawGet(key)
	o.Printf("%s = %s", key.Name(), formatValue(key, v))
}

type dataSet struct {
	Set   cmd.SubCommand `cmd:"set"`
	Key   keyName        `cmd:"key"`
	Value cmd.Varargs    `cmd:"value"`
}

func (c dataSet) Run(src cmd.Source, o *cmd.Output, _ *world.Tx) {
	h := Command(src)
	if h == nil {
		o.Error("This command can only be run by players.")
		return
	}
	r := h.session.manager.registry
	key, t, ok := lookupKey(r, string(c.Key))
	if !ok {
		o.Errorf("Unknown key %s.", c.Key)
		return
	}
	v, err := parseValue(key, string(c.Value))
	if err != nil {
		o.Errorf("Invalid value for %s: %v", key.Name(), err)
		return
	}
	m, ok := r.Get(h, t)
	if !ok {
		m = t.New()
	}
	if err := m.RawSet(key, v); err != nil {
		o.Errorf("Invalid value for %s: %v", key.Name(), err)
		return
	}
	res := r.Offer(h, m, KeepReplacement)
	if !res.IsSuccessful() {
		o.Errorf("Setting %s failed: %s", key.Name(), res.Type())
		return
	}
	o.Printf("%s = %s", key.Name(), formatValue(key, v))
}

type dataRemove struct {
	Remove cmd.SubCommand `cmd:"remove"`
	Trait  traitName      `cmd:"trait"`
}

func (c dataRemove) Run(src cmd.Source, o *cmd.Output, _ *world.Tx) {
	h := Command(src)
	if h == nil {
		o.Error("This command can only be run by players.")
		return
	}
	r := h.session.manager.registry
	t, ok := r.Trait(string(c.Trait))
	if !ok {
		o.Errorf("Unknown trait %s.", c.Trait)
		return
	}
	if res := r.Remove(h, t); !res.IsSuccessful() {
		o.Errorf("%s cannot be removed.", t.Name())
		return
	}
	o.Printf("Removed %s.", t.Name())
}

// lookupKey returns the registered key with the given name and its trait.
func lookupKey(r *Registry, name string) (AnyKey, *Trait, bool) {
	key, ok := KeyByName(name)
	if !ok {
		return nil, nil, false
	}
	t, ok := r.TraitOf(key)
	if !ok {
		return nil, nil, false
	}
	return key, t, true
}

// parseValue parses a YAML value for key. String keys take the text as is.
func parseValue(key AnyKey, s string) (any, error) {
	if key.Type().Kind() == reflect.String {
		return reflect.ValueOf(s).Convert(key.Type()).Interface(), nil
	}
	var raw any
	if err := yaml.Unmarshal([]byte(s), &raw); err != nil {
		return nil, err
	}
	return key.decode(raw)
}

// formatValue formats v the way parseValue reads it.
func formatValue(key AnyKey, v any) string {
	raw, err := key.encode(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	var n yaml.Node
	if err := n.Encode(raw); err != nil {
		return fmt.Sprint(raw)
	}
	n.Style = yaml.FlowStyle
	b, err := yaml.Marshal(&n)
	if err != nil {
		return fmt.Sprint(raw)
	}
	return strings.TrimSpace(string(b))
}

// formatManipulator formats every value of m on one line.
func formatManipulator(m *Manipulator) string {
	parts := make([]string, 0, len(m.values))
	for i, k := range m.trait.keys {
		parts = append(parts, k.Name()+"="+formatValue(k, m.values[i]))
	}
	return m.trait.name + ": " + strings.Join(parts, ", ")
}
