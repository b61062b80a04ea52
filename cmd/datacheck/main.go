// datacheck validates the YAML data tables without starting the server.
// Run it after editing data files; a non-zero exit means the server would
// refuse to boot (or silently drop entries) with the current data.
//
// Usage:
//
//	go run ./cmd/datacheck [data/yaml]
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/grottogame/server/internal/data"
)

func main() {
	dir := "data/yaml"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	failed := false
	warned := 0

	bubbles, err := data.LoadBubbleTable(filepath.Join(dir, "bubble_list.yaml"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "bubble_list: %v\n", err)
		failed = true
	} else {
		fmt.Printf("bubble_list:    %d types\n", bubbles.Count())
		warned += report(bubbles.Skipped)
	}

	monsters, err := data.LoadMonsterTable(filepath.Join(dir, "monster_list.yaml"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "monster_list: %v\n", err)
		failed = true
	} else {
		fmt.Printf("monster_list:   %d types\n", monsters.Count())
		warned += report(monsters.Skipped)
	}

	arenas, err := data.LoadArenaTable(filepath.Join(dir, "arena_list.yaml"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "arena_list: %v\n", err)
		failed = true
	} else {
		fmt.Printf("arena_list:     %d arenas\n", arenas.Count())
		warned += report(arenas.Skipped)
	}

	abilities, err := data.LoadAbilityTable(filepath.Join(dir, "ability_list.yaml"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ability_list: %v\n", err)
		failed = true
	} else {
		fmt.Printf("ability_list:   %d abilities\n", abilities.Count())
		warned += report(abilities.Skipped)
	}

	// Cross-table check: every bubble must hatch a monster the monster
	// table actually has. The server drops such types at boot; here it is
	// an error so CI catches the typo.
	if bubbles != nil && monsters != nil {
		for _, b := range bubbles.All() {
			if monsters.Get(b.MonsterID) == nil {
				fmt.Fprintf(os.Stderr, "bubble %q: hatch monster %q not in monster_list\n", b.ID, b.MonsterID)
				failed = true
			}
		}
	}

	if failed || warned > 0 {
		fmt.Fprintf(os.Stderr, "\ndatacheck: %d warnings, hard errors: %v\n", warned, failed)
	}
	if failed {
		os.Exit(1)
	}
	fmt.Println("\nall tables OK")
}

func report(skipped []string) int {
	for _, msg := range skipped {
		fmt.Fprintf(os.Stderr, "  warning: %s\n", msg)
	}
	return len(skipped)
}
