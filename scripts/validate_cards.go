// Card set lint. Loads a card data file through the same decoder the server
// uses and reports structural problems the loader cannot see: leaders without
// full zone maps, characters without power, effect rules with impossible
// parameters.
//
// Usage: go run scripts/validate_cards.go [path/to/cards.yaml]
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/revrebgame/revreb-server-go/internal/game/card"
)

func main() {
	var (
		reg *card.Registry
		err error
		src = "embedded set"
	)
	if len(os.Args) > 1 {
		src = os.Args[1]
		f, openErr := os.Open(src)
		if openErr != nil {
			log.Fatalf("open %s: %v", src, openErr)
		}
		defer f.Close()
		reg, err = card.LoadYAML(f)
	} else {
		reg, err = card.LoadDefaultSet()
	}
	if err != nil {
		log.Fatalf("load %s: %v", src, err)
	}

	counts := map[card.Kind]int{}
	problems := 0
	for _, id := range reg.IDs() {
		def, _ := reg.Lookup(id)
		counts[def.Kind]++
		for _, msg := range lint(def) {
			fmt.Printf("%-8s %s\n", id, msg)
			problems++
		}
	}

	fmt.Printf("\n%s: %d cards (%d leaders, %d characters, %d help, %d sp)\n",
		src, len(reg.IDs()),
		counts[card.KindLeader], counts[card.KindCharacter],
		counts[card.KindHelp], counts[card.KindSP])
	if problems > 0 {
		log.Fatalf("%d problems found", problems)
	}
	fmt.Println("ok")
}

func lint(def *card.Definition) []string {
	var out []string
	if def.Name == "" {
		out = append(out, "missing name")
	}

	switch def.Kind {
	case card.KindLeader:
		for _, z := range card.CharacterZones() {
			if len(def.ZoneCompatibility[z]) == 0 {
				out = append(out, fmt.Sprintf("leader has no compatibility entry for zone %q", z))
			}
		}
	case card.KindCharacter:
		if def.BasePower <= 0 {
			out = append(out, "character has no base power")
		}
		if def.GameType == "" {
			out = append(out, "character has no game type")
		}
	case card.KindHelp, card.KindSP:
		if def.GameType == "" {
			out = append(out, "card has no game type")
		}
	default:
		out = append(out, fmt.Sprintf("unknown kind %q", def.Kind))
	}

	for i, rule := range def.Effects {
		switch rule.Effect {
		case card.EffectPowerBoost, card.EffectSetPower, card.EffectTotalPowerNerf,
			card.EffectDrawCards, card.EffectRandomDiscard:
			if rule.Amount < 0 {
				out = append(out, fmt.Sprintf("effect %d: negative amount", i))
			}
		case card.EffectSearchCard:
			if rule.SearchCount <= 0 || rule.SelectCount <= 0 {
				out = append(out, fmt.Sprintf("effect %d: searchCard needs searchCount and selectCount", i))
			}
			if rule.SelectCount > rule.SearchCount {
				out = append(out, fmt.Sprintf("effect %d: selectCount exceeds searchCount", i))
			}
		}
		if rule.Target.RequiresSelection && rule.Target.TargetCount <= 0 {
			out = append(out, fmt.Sprintf("effect %d: selection without targetCount", i))
		}
	}
	return out
}
