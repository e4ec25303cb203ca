package validation

import (
	"strings"

	"github.com/sysu-ecnc-dev/task-tracker/backend/internal/utils"
)

type step struct {
	normalize func(string) string
	tag       string
	message   string
}

// Chain is the ordered list of steps applied to one field.
type Chain struct {
	field    string
	optional bool
	steps    []step
}

func Field(name string) *Chain {
	return &Chain{field: name}
}

// Optional skips the whole chain when the value is empty.
func (c *Chain) Optional() *Chain {
	c.optional = true
	return c
}

// Check fails the chain with message when value does not satisfy the
// validator tag. An empty message falls back to the translated default.
func (c *Chain) Check(tag, message string) *Chain {
	c.steps = append(c.steps, step{tag: tag, message: message})
	return c
}

func (c *Chain) Normalize(fn func(string) string) *Chain {
	c.steps = append(c.steps, step{normalize: fn})
	return c
}

func (c *Chain) Trim() *Chain {
	return c.Normalize(strings.TrimSpace)
}

func (c *Chain) NormalizeEmail() *Chain {
	return c.Normalize(utils.NormalizeEmail)
}

type RuleSet struct {
	name   string
	chains []*Chain
}

func NewRuleSet(name string, chains ...*Chain) RuleSet {
	return RuleSet{name: name, chains: chains}
}

func (rs RuleSet) Name() string {
	return rs.name
}

// Fields lists the validated field names in order.
func (rs RuleSet) Fields() []string {
	fields := make([]string, 0, len(rs.chains))
	for _, c := range rs.chains {
		fields = append(fields, c.field)
	}
	return fields
}
