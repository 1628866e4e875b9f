// room-fit searches for the per-band reflection coefficients of one scene
// material that make the simulated room impulse response match a measured
// reference IR.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cwbudde/mayfly"

	"github.com/cwbudde/algo-room/analysis"
	"github.com/cwbudde/algo-room/internal/wavio"
	"github.com/cwbudde/algo-room/material"
	"github.com/cwbudde/algo-room/preset"
	"github.com/cwbudde/algo-room/room"
)

type knobDef struct {
	Name string
	Min  float64
	Max  float64
}

type topCandidate struct {
	Eval       int                `json:"eval"`
	Score      float64            `json:"score"`
	Similarity float64            `json:"similarity"`
	Knobs      map[string]float64 `json:"knobs"`
}

type runReport struct {
	ReferencePath  string             `json:"reference_path"`
	ScenePath      string             `json:"scene_path"`
	Material       string             `json:"material"`
	OutputJSON     string             `json:"output_materials"`
	SampleRate     int                `json:"sample_rate"`
	DurationSec    float64            `json:"elapsed_seconds"`
	Evaluations    int                `json:"evaluations"`
	MayflyVariant  string             `json:"mayfly_variant"`
	BestScore      float64            `json:"best_score"`
	BestSimilarity float64            `json:"best_similarity"`
	BestMetrics    analysis.Metrics   `json:"best_metrics"`
	BestKnobs      map[string]float64 `json:"best_knobs"`
	TopCandidates  []topCandidate     `json:"top_candidates,omitempty"`
}

func main() {
	referencePath := flag.String("reference", "reference/room-ir.wav", "Measured reference IR WAV path")
	scenePath := flag.String("scene", "assets/scenes/default.json", "Scene preset JSON path")
	materialName := flag.String("material", material.DefaultName, "Material name to fit")
	outputJSON := flag.String("output-materials", "out/fitted-materials.json", "Path to write the fitted materials JSON")
	reportPath := flag.String("report", "", "Optional report JSON path (default: <output-materials>.report.json)")
	seed := flag.Int64("seed", 1, "Random seed")
	timeBudget := flag.Float64("time-budget", 60.0, "Optimization time budget in seconds")
	maxEvals := flag.Int("max-evals", 2000, "Maximum objective evaluations")
	reportEvery := flag.Int("report-every", 20, "Print progress every N evaluations")
	topK := flag.Int("top-k", 5, "How many top candidates to keep in report")

	mayflyVariant := flag.String("mayfly-variant", "desma", "Mayfly variant: ma|desma|olce|eobbma|gsasma|mpma|aoblmoa")
	mayflyPop := flag.Int("mayfly-pop", 10, "Male and female population size per Mayfly run")
	mayflyRoundEvals := flag.Int("mayfly-round-evals", 240, "Target eval budget per Mayfly round")
	flag.Parse()

	if *outputJSON == "" {
		die("output-materials must not be empty")
	}
	if *maxEvals < 1 {
		die("max-evals must be >= 1")
	}
	if *timeBudget <= 0 {
		die("time-budget must be > 0")
	}
	if *reportEvery < 1 {
		*reportEvery = 1
	}
	if *mayflyPop < 2 {
		*mayflyPop = 2
	}
	if *mayflyRoundEvals < *mayflyPop*2 {
		*mayflyRoundEvals = *mayflyPop * 2
	}
	if *topK < 1 {
		*topK = 1
	}
	if *reportPath == "" {
		*reportPath = *outputJSON + ".report.json"
	}

	scene, err := preset.LoadJSON(*scenePath)
	if err != nil {
		die("failed to load scene: %v", err)
	}
	registry := scene.Config.Registry
	if registry == nil {
		registry = material.NewRegistry()
		scene.Config.Registry = registry
	}

	ref, refSR, err := wavio.ReadMono(*referencePath)
	if err != nil {
		die("failed to read reference IR: %v", err)
	}
	ref, err = wavio.ResampleIfNeeded(ref, refSR, scene.Config.SampleRate)
	if err != nil {
		die("failed to resample reference IR: %v", err)
	}

	defs := make([]knobDef, material.NumBands)
	for i, f := range material.BandFrequencies {
		defs[i] = knobDef{Name: fmt.Sprintf("reflection_%.0fhz", f), Min: 0, Max: 1}
	}

	baseProfile := registry.Get(*materialName)
	baseProfile.Name = *materialName

	evaluate := func(vals []float64) (analysis.Metrics, material.Profile, error) {
		p := baseProfile
		for i := range p.Reflection {
			p.Reflection[i] = float32(vals[i])
			p.Absorption[i] = float32(1 - vals[i])
		}
		registry.Register(p)

		sim, err := room.NewSimulator(scene.Mesh, scene.Config)
		if err != nil {
			return analysis.Metrics{}, p, err
		}
		ir := sim.ImpulseResponse(scene.Source, scene.Listener)
		m := analysis.Compare(ref, wavio.ToFloat64(ir), scene.Config.SampleRate)
		return m, p, nil
	}

	start := time.Now()
	deadline := start.Add(time.Duration(*timeBudget * float64(time.Second)))

	best := make([]float64, len(defs))
	for i := range best {
		best[i] = float64(baseProfile.Reflection[i])
	}
	bestM, bestProfile, err := evaluate(best)
	if err != nil {
		die("initial evaluation failed: %v", err)
	}
	evals := 1
	var top []topCandidate
	round := 0

	for evals < *maxEvals && time.Now().Before(deadline) {
		round++
		remaining := *maxEvals - evals
		budget := minInt(*mayflyRoundEvals, remaining)
		iters := maxInt(1, budget/(2*(*mayflyPop)))

		cfg, err := newMayflyConfig(strings.ToLower(*mayflyVariant), *mayflyPop, len(defs), iters)
		if err != nil {
			die("invalid mayfly variant: %v", err)
		}
		cfg.Rand = rand.New(rand.NewSource(*seed + int64(round)*7919))

		cfg.ObjectiveFunc = func(pos []float64) float64 {
			if evals >= *maxEvals || time.Now().After(deadline) {
				return bestM.Score + 1.0
			}
			cand := fromNormalized(pos, defs)
			m, p, err := evaluate(cand)
			evals++
			if err != nil {
				return bestM.Score + 0.8
			}

			top = updateTopCandidates(top, *topK, evals, m, defs, cand)

			if m.Score < bestM.Score {
				copy(best, cand)
				bestM = m
				bestProfile = p
				fmt.Printf("Improved eval=%d score=%.4f sim=%.2f%%\n", evals, bestM.Score, bestM.Similarity*100.0)
			}
			if evals%*reportEvery == 0 {
				fmt.Printf("Progress round=%d eval=%d elapsed=%.1fs best=%.4f\n",
					round, evals, time.Since(start).Seconds(), bestM.Score)
			}
			return m.Score
		}

		if _, err := runMayfly(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "room-fit: mayfly round %d failed: %v\n", round, err)
			continue
		}
	}

	registry.Register(bestProfile)
	if dir := filepath.Dir(*outputJSON); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			die("failed to create output directory: %v", err)
		}
	}
	if err := registry.ExportJSON(*outputJSON); err != nil {
		die("failed to write materials: %v", err)
	}

	report := runReport{
		ReferencePath:  *referencePath,
		ScenePath:      *scenePath,
		Material:       *materialName,
		OutputJSON:     *outputJSON,
		SampleRate:     scene.Config.SampleRate,
		DurationSec:    time.Since(start).Seconds(),
		Evaluations:    evals,
		MayflyVariant:  strings.ToLower(*mayflyVariant),
		BestScore:      bestM.Score,
		BestSimilarity: bestM.Similarity,
		BestMetrics:    bestM,
		BestKnobs:      knobMap(defs, best),
		TopCandidates:  top,
	}
	if err := writeReport(*reportPath, &report); err != nil {
		die("failed to write report: %v", err)
	}

	fmt.Printf("Done: evals=%d elapsed=%.1fs best=%.4f sim=%.2f%%\n",
		evals, report.DurationSec, bestM.Score, bestM.Similarity*100.0)
	fmt.Printf("Wrote %s and %s\n", *outputJSON, *reportPath)
}

func newMayflyConfig(variant string, pop int, dims int, iters int) (*mayfly.Config, error) {
	var cfg *mayfly.Config
	switch variant {
	case "ma":
		cfg = mayfly.NewDefaultConfig()
	case "desma":
		cfg = mayfly.NewDESMAConfig()
	case "olce":
		cfg = mayfly.NewOLCEConfig()
	case "eobbma":
		cfg = mayfly.NewEOBBMAConfig()
	case "gsasma":
		cfg = mayfly.NewGSASMAConfig()
	case "mpma":
		cfg = mayfly.NewMPMAConfig()
	case "aoblmoa":
		cfg = mayfly.NewAOBLMOAConfig()
	default:
		return nil, fmt.Errorf("unsupported variant %q", variant)
	}
	cfg.ProblemSize = dims
	cfg.LowerBound = 0.0
	cfg.UpperBound = 1.0
	cfg.MaxIterations = iters
	cfg.NPop = pop
	cfg.NPopF = pop
	cfg.NC = 2 * pop
	cfg.NM = maxInt(1, int(math.Round(0.05*float64(pop))))
	return cfg, nil
}

func runMayfly(cfg *mayfly.Config) (_ *mayfly.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mayfly panic: %v", r)
		}
	}()
	return mayfly.Optimize(cfg)
}

func fromNormalized(pos []float64, defs []knobDef) []float64 {
	out := make([]float64, len(defs))
	for i, d := range defs {
		v := pos[i]
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		out[i] = d.Min + v*(d.Max-d.Min)
	}
	return out
}

func knobMap(defs []knobDef, vals []float64) map[string]float64 {
	m := make(map[string]float64, len(defs))
	for i, d := range defs {
		m[d.Name] = vals[i]
	}
	return m
}

func updateTopCandidates(top []topCandidate, k int, eval int, m analysis.Metrics, defs []knobDef, vals []float64) []topCandidate {
	top = append(top, topCandidate{
		Eval:       eval,
		Score:      m.Score,
		Similarity: m.Similarity,
		Knobs:      knobMap(defs, vals),
	})
	sort.Slice(top, func(i, j int) bool { return top[i].Score < top[j].Score })
	if len(top) > k {
		top = top[:k]
	}
	return top
}

func writeReport(path string, report *runReport) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "room-fit: "+format+"\n", args...)
	os.Exit(1)
}
