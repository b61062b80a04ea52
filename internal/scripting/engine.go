package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM holding the game's tuning curves.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory. Every bridge has a Go fallback, so a missing or broken
// script degrades to built-in tuning instead of failing the boot.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load scripts: %w", err)
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// DifficultyTarget calls Lua difficulty_target(elapsed, score): the
// difficulty the run should be at after `elapsed` seconds with `score`
// total points on the board. Fallback ramps one level per two minutes
// plus a small score push.
func (e *Engine) DifficultyTarget(elapsed float64, score int) float64 {
	fn := e.vm.GetGlobal("difficulty_target")
	if fn == lua.LNil {
		return fallbackDifficultyTarget(elapsed, score)
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LNumber(elapsed), lua.LNumber(score)); err != nil {
		e.log.Warn("lua difficulty_target error", zap.Error(err))
		return fallbackDifficultyTarget(elapsed, score)
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)
	return float64(lua.LVAsNumber(result))
}

func fallbackDifficultyTarget(elapsed float64, score int) float64 {
	return 1.0 + elapsed/120.0 + float64(score)/2500.0
}

// TuneWeights calls Lua tune_weights(difficulty), which returns a table
// of bubble type ID → runtime weight multiplier. A nil return means
// "leave the current multipliers alone".
func (e *Engine) TuneWeights(difficulty float64) map[string]float64 {
	fn := e.vm.GetGlobal("tune_weights")
	if fn == lua.LNil {
		return nil
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LNumber(difficulty)); err != nil {
		e.log.Warn("lua tune_weights error", zap.Error(err))
		return nil
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)

	tbl, ok := result.(*lua.LTable)
	if !ok {
		return nil
	}
	mults := make(map[string]float64)
	tbl.ForEach(func(k, v lua.LValue) {
		id := lua.LVAsString(k)
		if id == "" {
			return
		}
		mults[id] = float64(lua.LVAsNumber(v))
	})
	return mults
}

// MeleeDamage calls Lua melee_damage(base, difficulty, combo) for a
// player's hit on a monster. Fallback: flat base plus a small combo bonus.
func (e *Engine) MeleeDamage(base int, difficulty float64, combo int) int {
	fn := e.vm.GetGlobal("melee_damage")
	if fn == lua.LNil {
		return fallbackMeleeDamage(base, combo)
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LNumber(base), lua.LNumber(difficulty), lua.LNumber(combo)); err != nil {
		e.log.Warn("lua melee_damage error", zap.Error(err))
		return fallbackMeleeDamage(base, combo)
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)
	dmg := int(lua.LVAsNumber(result))
	if dmg < 0 {
		dmg = 0
	}
	return dmg
}

func fallbackMeleeDamage(base, combo int) int {
	dmg := base + combo/5
	if dmg < 1 {
		dmg = 1
	}
	return dmg
}

// AbilityPower calls Lua ability_power(id, power, difficulty) so scripts
// can rescale ability effects per difficulty. Fallback: the template power.
func (e *Engine) AbilityPower(id string, power, difficulty float64) float64 {
	fn := e.vm.GetGlobal("ability_power")
	if fn == lua.LNil {
		return power
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LString(id), lua.LNumber(power), lua.LNumber(difficulty)); err != nil {
		e.log.Warn("lua ability_power error", zap.Error(err))
		return power
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)
	return float64(lua.LVAsNumber(result))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
