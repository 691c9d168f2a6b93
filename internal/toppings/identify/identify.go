// Package identify implements the first topping of every run: it finds the
// classes later toppings build on by looking for string constants that
// survive obfuscation.
package identify

import (
	"context"
	"fmt"
	"log/slog"

	"burger/internal/aggregate"
	"burger/internal/artifact"
	"burger/internal/classfile"
	"burger/internal/crawler"
	"burger/internal/signature"
	"burger/internal/topping"
)

// Name is the topping name other toppings may depend on.
const Name = "identify"

// Labels written by this topping.
const (
	BlockSuperclass  = "block.superclass"
	PacketSuperclass = "packet.superclass"
	RecipeSuperclass = "recipe.superclass"
	ItemSuperclass   = "item.superclass"
	EntityList       = "entity.list"
	NetHandlerClient = "nethandler.client"
	NetHandlerServer = "nethandler.server"
	BiomeSuperclass  = "biome.superclass"
)

// Aliases are declared so dependents can name them, but nothing writes them
// during identification.
const (
	RecipeInventory = "recipe.inventory"
	RecipeCloth     = "recipe.cloth"
	NetHandler      = "nethandler"
)

// DefaultRules is the rule table in priority order.
var DefaultRules = signature.Rules{
	{Label: BlockSuperclass, Predicate: signature.Contains("when adding")},
	{Label: PacketSuperclass, Predicate: signature.Contains("Duplicate packet")},
	{Label: RecipeSuperclass, Predicate: signature.Contains("X#X")},
	{Label: ItemSuperclass, Predicate: signature.ContainsAny("crafting results", "CONFLICT @ ")},
	{Label: EntityList, Predicate: signature.Contains("Skipping Entity with id ")},
	{Label: NetHandlerClient, Predicate: signature.Contains("disconnect.loginFailedInfo")},
	{Label: NetHandlerServer, Predicate: signature.Contains("Outdated client!")},
	{Label: BiomeSuperclass, Predicate: signature.Contains("Plains")},
}

// DefaultAliases are the extra labels declared alongside DefaultRules.
var DefaultAliases = []string{RecipeInventory, RecipeCloth, NetHandler}

// Topping assigns rule labels to the first unit matching each rule.
type Topping struct {
	rules    signature.Rules
	labels   []string
	provides []string
}

var _ topping.Topping = (*Topping)(nil)

// New returns the topping with the default rule table.
func New() *Topping {
	return NewWithRules(DefaultRules, DefaultAliases...)
}

// NewWithRules returns the topping driven by rules. aliases are added to the
// provides list without being written.
func NewWithRules(rules signature.Rules, aliases ...string) *Topping {
	labels := rules.Labels()
	provides := make([]string, 0, len(labels)+len(aliases))
	provides = append(provides, labels...)
	provides = append(provides, aliases...)
	return &Topping{
		rules:    append(signature.Rules(nil), rules...),
		labels:   labels,
		provides: provides,
	}
}

func (t *Topping) Name() string { return Name }

func (t *Topping) Provides() []string {
	return append([]string(nil), t.provides...)
}

// Depends is empty: identification is always eligible to run first.
func (t *Topping) Depends() []string { return nil }

// Expected returns the number of distinct labels the rule table can produce.
func (t *Topping) Expected() int { return len(t.labels) }

// Labels returns the rule labels in priority order, without aliases.
func (t *Topping) Labels() []string {
	return append([]string(nil), t.labels...)
}

// Identify returns the label of the first rule whose literal appears in the
// unit's String constants.
func (t *Topping) Identify(view classfile.View) (string, bool) {
	return t.rules.First(view)
}

// Act walks the units of jar in container order and records the first unit
// seen for each label. The walk ends as soon as every label is present. A
// partial result is not an error.
func (t *Topping) Act(ctx context.Context, out *aggregate.Scoped, jar artifact.Artifact, opts topping.Options) error {
	log := opts.Log().With(slog.String("topping", Name))

	total := len(t.labels)
	found := out.Count(t.labels)
	if found >= total {
		return nil
	}

	foundLevel := slog.LevelDebug
	if opts.Verbose {
		foundLevel = slog.LevelInfo
	}

	var writeErr error
	st, err := crawler.NewCrawler(log, opts.Verbose).ScanArtifact(ctx, jar, func(name string, cf *classfile.ClassFile) bool {
		label, ok := t.Identify(cf.Constants)
		if !ok {
			return true
		}
		wrote, err := out.SetIfAbsent(label, name)
		if err != nil {
			writeErr = err
			return false
		}
		if !wrote {
			return true
		}
		found++
		log.Log(ctx, foundLevel, "identified unit",
			slog.String("label", label),
			slog.String("unit", name),
			slog.String("class", cf.ThisClass),
		)
		return found < total
	})
	if writeErr != nil {
		return writeErr
	}
	if err != nil {
		return fmt.Errorf("identify: %w", err)
	}

	log.Debug("identification finished",
		slog.Int("found", found),
		slog.Int("expected", total),
		slog.Int("units", st.Units),
		slog.Int("undecodable", st.Failed),
		slog.Bool("stopped_early", st.Stopped),
	)
	return nil
}
