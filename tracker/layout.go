package tracker

import (
	"slices"

	"github.com/tobani/outrun/internal/models"
)

// layoutRule inserts a section tag immediately after its anchor when
// the tag is missing from a persisted layout. New sections added in
// later releases get a rule here instead of ad hoc patching.
type layoutRule struct {
	tag    string
	anchor string
}

var layoutRules = []layoutRule{
	{tag: models.SectionRecords, anchor: models.SectionStrategy},
}

// HealLayout migrates a persisted section order so every known section
// tag appears exactly once. An empty order falls back to the default.
func HealLayout(order []string) []string {
	if len(order) == 0 {
		order = models.DefaultLayout()
	}

	healed := make([]string, 0, len(order)+len(layoutRules))

	for _, tag := range order {
		if !slices.Contains(healed, tag) {
			healed = append(healed, tag)
		}
	}

	for _, rule := range layoutRules {
		if slices.Contains(healed, rule.tag) {
			continue
		}

		at := slices.Index(healed, rule.anchor)
		if at == -1 {
			healed = append(healed, rule.tag)
			continue
		}

		healed = slices.Insert(healed, at+1, rule.tag)
	}

	return healed
}
