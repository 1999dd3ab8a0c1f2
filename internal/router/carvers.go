package router

import (
	"planetgen.ai/internal/density"
	"planetgen.ai/internal/presets"
)

// Carver names, in the order they are layered.
const (
	CheeseCaves       = "cheese_caves"
	NoodleCaves       = "noodle_caves"
	UndergroundRivers = "underground_rivers"
	LavaTunnels       = "lava_tunnels"

	DesertDunes   = "desert_dunes"
	JunglePillars = "jungle_pillars"
)

// Host aquifer and ore vein noises.
const (
	noiseAquiferBarrier     = "minecraft:aquifer_barrier"
	noiseAquiferFloodedness = "minecraft:aquifer_fluid_level_floodedness"
	noiseAquiferSpread      = "minecraft:aquifer_fluid_level_spread"
	noiseAquiferLava        = "minecraft:aquifer_lava"
	noiseOreVeininess       = "minecraft:ore_veininess"
	noiseOreVeinA           = "minecraft:ore_vein_a"
	noiseOreVeinB           = "minecraft:ore_vein_b"
	noiseOreGap             = "minecraft:ore_gap"
)

// HostNoises lists the host-owned noises a router may sample.
var HostNoises = []string{
	noiseAquiferBarrier, noiseAquiferFloodedness, noiseAquiferSpread, noiseAquiferLava,
	noiseOreVeininess, noiseOreVeinA, noiseOreVeinB, noiseOreGap,
}

func (a assembler) carvers(roles map[string]density.Func) ([]Layer, error) {
	cfg := a.cfg
	var out []Layer
	if cfg.CheeseCaves {
		// Blobby chambers where the noise dips below -0.55.
		cheese := a.noise("cheese", 1, 0.6667).AddConst(0.55).Clamp(-1, 1)
		out = append(out, Layer{CheeseCaves, cheese})
	}
	if cfg.NoodleCaves {
		// Thin tunnels along the zero set of the noise.
		noodle := a.noise("noodle", 1, 1).Abs().AddConst(-0.05).Interpolated()
		out = append(out, Layer{NoodleCaves, noodle})
	}
	if cfg.UndergroundRivers {
		river, err := a.spline(presets.UndergroundRiver, roles)
		if err != nil {
			return nil, err
		}
		bottom, top := a.sea-30, a.sea-10
		if bottom <= a.minY {
			bottom = a.minY + 1
		}
		if top <= bottom {
			top = bottom + 1
		}
		above := density.YGradient(top, top+8, -1, 1)
		below := density.YGradient(bottom-8, bottom, 1, -1)
		out = append(out, Layer{UndergroundRivers, density.MaxOf(river, above, below)})
	}
	if cfg.LavaTunnels {
		rarity := a.noise("lava_rarity", 2, 1)
		tunnel := rarity.WeirdScaled(NoiseID(a.ns, a.planet, "lava_tunnel"), density.RarityTunnels).AddConst(-0.08)
		depthMask := density.YGradient(a.minY+16, a.minY+64, -1, 1)
		out = append(out, Layer{LavaTunnels, tunnel.Max(depthMask)})
	}
	return out, nil
}

func (a assembler) decorations(roles map[string]density.Func) ([]Layer, error) {
	var out []Layer
	if a.cfg.DesertDunes {
		f, err := a.spline(presets.DesertDunes, roles)
		if err != nil {
			return nil, err
		}
		out = append(out, Layer{DesertDunes, f.Cache2D()})
	}
	if a.cfg.JunglePillars {
		f, err := a.spline(presets.JunglePillars, roles)
		if err != nil {
			return nil, err
		}
		out = append(out, Layer{JunglePillars, f.Cache2D()})
	}
	return out, nil
}

func (a assembler) aquifers(b *Builder) {
	if !a.cfg.Aquifers {
		b.Barrier(density.Const(0)).
			FluidLevelFloodedness(density.Const(0)).
			FluidLevelSpread(density.Const(0)).
			Lava(density.Const(0))
		return
	}
	b.Barrier(density.NoiseFunc(noiseAquiferBarrier, 1, 0.5)).
		FluidLevelFloodedness(density.NoiseFunc(noiseAquiferFloodedness, 1, 0.67)).
		FluidLevelSpread(density.NoiseFunc(noiseAquiferSpread, 1, 0.7142857142857143)).
		Lava(density.NoiseFunc(noiseAquiferLava, 1, 1))
}

// veins confines ore veins to the band between min_y+4 and sea level.
func (a assembler) veins(b *Builder) {
	if !a.cfg.OreVeins {
		b.VeinToggle(density.Const(0)).
			VeinRidged(density.Const(0)).
			VeinGap(density.Const(0))
		return
	}
	lo, hi := float64(a.minY+4), float64(a.sea)
	y := density.Ref(density.RefY)
	toggle := y.RangeChoice(lo, hi, density.NoiseFunc(noiseOreVeininess, 1.5, 1.5), density.Const(0)).Interpolated()
	ridged := y.RangeChoice(lo, hi,
		density.MaxOf(
			density.NoiseFunc(noiseOreVeinA, 4, 4).Abs(),
			density.NoiseFunc(noiseOreVeinB, 4, 4).Abs(),
		).AddConst(-0.08),
		density.Const(0)).Interpolated()
	b.VeinToggle(toggle).
		VeinRidged(ridged).
		VeinGap(density.NoiseFunc(noiseOreGap, 1, 1))
}
