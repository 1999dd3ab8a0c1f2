package datapack

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"planetgen.ai/internal/climate"
	"planetgen.ai/internal/planet"
)

// PackFormat is the pack.mcmeta format written at the pack root.
const PackFormat = 48

// File is one document of the pack, addressed by its slash-separated path
// relative to the pack root.
type File struct {
	Path string
	Kind Kind
	Data []byte
}

// Pack is the rendered datapack for a set of planets. Files are sorted by
// path.
type Pack struct {
	Namespace string
	Files     []File
}

type dimensionType struct {
	MinY                        int     `json:"min_y"`
	Height                      int     `json:"height"`
	LogicalHeight               int     `json:"logical_height"`
	HasSkylight                 bool    `json:"has_skylight"`
	HasCeiling                  bool    `json:"has_ceiling"`
	Ultrawarm                   bool    `json:"ultrawarm"`
	Natural                     bool    `json:"natural"`
	CoordinateScale             float64 `json:"coordinate_scale"`
	AmbientLight                float64 `json:"ambient_light"`
	BedWorks                    bool    `json:"bed_works"`
	RespawnAnchorWorks          bool    `json:"respawn_anchor_works"`
	PiglinSafe                  bool    `json:"piglin_safe"`
	HasRaids                    bool    `json:"has_raids"`
	Infiniburn                  string  `json:"infiniburn"`
	Effects                     string  `json:"effects"`
	MonsterSpawnLightLevel      int     `json:"monster_spawn_light_level"`
	MonsterSpawnBlockLightLimit int     `json:"monster_spawn_block_light_limit"`
}

type generator struct {
	Type        string                `json:"type"`
	Settings    string                `json:"settings"`
	BiomeSource *climate.ParameterMap `json:"biome_source"`
}

type dimension struct {
	Type      string    `json:"type"`
	Generator generator `json:"generator"`
}

// Render encodes every artifact and validates each document. All artifacts
// must share one namespace.
func Render(arts []*planet.Artifact, v *Validator) (*Pack, error) {
	if len(arts) == 0 {
		return nil, fmt.Errorf("datapack: no planets")
	}
	p := &Pack{Namespace: arts[0].Namespace}
	seen := map[string]bool{}
	add := func(path string, kind Kind, doc any) error {
		if seen[path] {
			return nil
		}
		b, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("datapack: %s: %w", path, err)
		}
		if err := v.Validate(kind, b); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		seen[path] = true
		p.Files = append(p.Files, File{Path: path, Kind: kind, Data: append(b, '\n')})
		return nil
	}

	for _, a := range arts {
		if a.Namespace != p.Namespace {
			return nil, fmt.Errorf("datapack: planet %s namespace %q, pack is %q", a.Spec.ID, a.Namespace, p.Namespace)
		}
		ns, id := a.Namespace, a.Spec.ID
		if err := add(worldgenPath(ns, "noise_settings", id), KindNoiseSettings, a.Settings); err != nil {
			return nil, err
		}
		if err := add(fmt.Sprintf("data/%s/dimension_type/%s.json", ns, id), KindDimensionType, dimensionTypeFor(a)); err != nil {
			return nil, err
		}
		dim := dimension{
			Type: ns + ":" + id,
			Generator: generator{
				Type:        "minecraft:noise",
				Settings:    ns + ":" + id,
				BiomeSource: a.Biomes,
			},
		}
		if err := add(fmt.Sprintf("data/%s/dimension/%s.json", ns, id), KindDimension, dim); err != nil {
			return nil, err
		}
		for nid, def := range a.Noises {
			nns, path, ok := strings.Cut(nid, ":")
			if !ok || nns == "minecraft" {
				continue
			}
			if err := add(worldgenPath(nns, "noise", path), KindNoise, def); err != nil {
				return nil, err
			}
		}
	}
	sort.Slice(p.Files, func(i, j int) bool { return p.Files[i].Path < p.Files[j].Path })
	return p, nil
}

func worldgenPath(ns, registry, path string) string {
	return fmt.Sprintf("data/%s/worldgen/%s/%s.json", ns, registry, path)
}

func dimensionTypeFor(a *planet.Artifact) dimensionType {
	height := a.Spec.MaxY - a.Spec.MinY
	return dimensionType{
		MinY:            a.Spec.MinY,
		Height:          height,
		LogicalHeight:   height,
		HasSkylight:     true,
		Ultrawarm:       a.Spec.DefaultFluid == "minecraft:lava",
		CoordinateScale: 1,
		Infiniburn:      "#minecraft:infiniburn_overworld",
		Effects:         "minecraft:overworld",
	}
}

// Lookup returns the file at path.
func (p *Pack) Lookup(path string) (File, bool) {
	i := sort.Search(len(p.Files), func(i int) bool { return p.Files[i].Path >= path })
	if i < len(p.Files) && p.Files[i].Path == path {
		return p.Files[i], true
	}
	return File{}, false
}

// Digest hashes every path and document in order.
func (p *Pack) Digest() string {
	h := sha256.New()
	for _, f := range p.Files {
		h.Write([]byte(f.Path))
		h.Write([]byte{0})
		h.Write(f.Data)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (p *Pack) mcmeta() []byte {
	b, _ := json.MarshalIndent(map[string]any{
		"pack": map[string]any{
			"pack_format": PackFormat,
			"description": p.Namespace + " planets",
		},
	}, "", "  ")
	return append(b, '\n')
}

// WriteDir writes the pack layout under root, including pack.mcmeta.
func (p *Pack) WriteDir(root string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(root, "pack.mcmeta"), p.mcmeta(), 0o644); err != nil {
		return err
	}
	for _, f := range p.Files {
		path := filepath.Join(root, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, f.Data, 0o644); err != nil {
			return err
		}
	}
	return nil
}
