package worldserver

import (
	"github.com/udisondev/la2go/internal/dataservice"
	"github.com/udisondev/la2go/internal/model"
)

// grantKillReward credits the killer with a monster template's flat
// experience and gold reward. Party-split distribution is not supported;
// the killer takes the full reward solo.
func grantKillReward(killer *model.PlayerEntity, tmpl dataservice.MonsterTemplate) {
	killer.AddExperience(tmpl.ExpReward)
	killer.AddGold(tmpl.GoldReward)
}
