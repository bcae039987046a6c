package worldserver

import "github.com/udisondev/la2go/internal/dataservice"

// SkillCatalog indexes skill templates by id for the tick loop's
// skill-attack resolution.
type SkillCatalog struct {
	byID map[int32]dataservice.SkillTemplate
}

// NewSkillCatalog indexes templates loaded once at startup.
func NewSkillCatalog(templates []dataservice.SkillTemplate) *SkillCatalog {
	c := &SkillCatalog{byID: make(map[int32]dataservice.SkillTemplate, len(templates))}
	for _, t := range templates {
		c.byID[t.SkillID] = t
	}
	return c
}

// Lookup returns the skill template for id, if configured.
func (c *SkillCatalog) Lookup(skillID int32) (dataservice.SkillTemplate, bool) {
	if c == nil {
		return dataservice.SkillTemplate{}, false
	}
	t, ok := c.byID[skillID]
	return t, ok
}
