package core

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/bionetlab/interactome/internal/config"
	"github.com/bionetlab/interactome/internal/core/community"
	"github.com/bionetlab/interactome/internal/core/dedupe"
	"github.com/bionetlab/interactome/internal/core/emit"
	"github.com/bionetlab/interactome/internal/core/merge"
	"github.com/bionetlab/interactome/internal/core/model"
	"github.com/bionetlab/interactome/internal/core/project"
	"github.com/bionetlab/interactome/internal/driver"
	"github.com/bionetlab/interactome/internal/export"
	"github.com/bionetlab/interactome/internal/idmap"
	"github.com/bionetlab/interactome/internal/kegg"
	"github.com/bionetlab/interactome/internal/logger"
	"github.com/bionetlab/interactome/internal/source"
	"github.com/bionetlab/interactome/internal/uniprot"
)

const (
	// interactionLabel is the relationship type of a reconciled
	// protein-protein interaction.
	interactionLabel = "Protein_interacts_with_protein"

	// pathwayEdgeLabel links annotation gene vertices into KEGG pathways.
	pathwayEdgeLabel = "Gene_is_related_to_pathway"
	pathwayNodeLabel = "pathway"

	uniprotPrefix = "uniprot"
	genePrefix    = "ncbigene"
)

// Annotator supplies the protein annotation catalog that backs identifier
// resolution, the reviewed allow set and the annotation vertices.
type Annotator interface {
	Fetch(ctx context.Context) (*uniprot.Catalog, error)
}

// ClientFactory builds one upstream source client by its configured name.
type ClientFactory func(name string, cfg *config.Config, deps source.Deps) (source.Client, error)

// Pipeline drives one build: download the annotation catalog, fetch every
// configured interaction source, reduce each to one record per unordered
// protein pair, fold the sources into a single reconciled table, project
// it into graph edges, and attach KEGG pathway context. Per-source
// progress runs through an explicit state machine so an unavailable
// source degrades the build instead of aborting it; only sources that
// reach the processed state take part in the merge.
type Pipeline struct {
	Config    *config.Config
	Log       *logger.Logger
	Fetcher   *source.Fetcher
	Annotator Annotator
	Clients   ClientFactory
	Detector  community.Detector

	mu       sync.Mutex
	statuses map[string]*model.SourceStatus
	order    []string

	catalog  *uniprot.Catalog
	resolver idmap.Resolver
	allow    map[string]struct{}
	specs    map[string]source.Spec

	merged       *model.MergedDataset
	interactions []model.Edge
	nodes        []model.Node
	annotations  []model.Edge
	keggNodes    []model.Node
	keggEdges    []model.Edge
	communities  [][]string
}

func NewPipeline(cfg *config.Config, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.NewNop()
	}
	fetcher := source.NewFetcher(nil, cfg.Pipeline.Retries, log)

	organism := cfg.UniProt.Organism
	if organism == "" {
		organism = cfg.Pipeline.Organism
	}

	return &Pipeline{
		Config:  cfg,
		Log:     log,
		Fetcher: fetcher,
		Annotator: uniprot.NewClient(uniprot.Options{
			BaseURL:     cfg.UniProt.BaseURL,
			Organism:    organism,
			SampleLimit: cfg.Pipeline.SampleLimit,
		}, fetcher, log),
		Clients:  source.NewClient,
		Detector: community.NewDetector(),
		statuses: make(map[string]*model.SourceStatus),
		specs:    make(map[string]source.Spec),
	}
}

// Run executes every stage and summarizes the outcome. Source and
// enrichment failures are recorded and logged, not returned; only
// configuration and merge errors abort the build.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	started := time.Now()

	if err := p.FetchAll(ctx); err != nil {
		return nil, err
	}
	p.ProcessAll()

	merged, err := p.MergeAll()
	if err != nil {
		return nil, err
	}
	if _, err := p.BuildEdges(); err != nil {
		return nil, err
	}

	if err := p.EnrichKegg(ctx); err != nil {
		p.Log.Warn("KEGG enrichment failed, continuing without pathways", "error", err)
	}
	if _, err := p.DetectCommunities(); err != nil {
		return nil, err
	}

	res := p.result(merged, time.Since(started))
	p.Log.Info("build complete",
		"merged_sources", res.MergedSources,
		"skipped_sources", res.Skipped,
		"pairs", res.Pairs,
		"edges", res.Edges,
		"duration", res.Duration)
	return res, nil
}

// Annotate downloads the annotation catalog once and derives the
// identifier resolver, the reviewed allow set and the annotation graph.
func (p *Pipeline) Annotate(ctx context.Context) error {
	if p.resolver != nil {
		return nil
	}

	catalog, err := p.Annotator.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to download the annotation catalog: %w", err)
	}

	table, err := idmap.NewTable(catalog.IDTable())
	if err != nil {
		return err
	}

	p.catalog = catalog
	p.resolver = table
	p.allow = table.ReviewedSet()
	p.nodes = catalog.Nodes()
	p.annotations = catalog.Edges()

	p.Log.Info("annotation catalog ready",
		"proteins", len(catalog.Entries), "nodes", len(p.nodes))
	return nil
}

// FetchAll downloads every configured source. A failed download marks the
// source failed and moves on; an unknown source name aborts, since that is
// a configuration mistake rather than an upstream outage.
func (p *Pipeline) FetchAll(ctx context.Context) error {
	if err := p.Annotate(ctx); err != nil {
		return err
	}

	deps := source.Deps{Fetcher: p.Fetcher, Resolver: p.resolver, Log: p.Log}

	for _, name := range p.sourceNames() {
		client, err := p.Clients(name, p.Config, deps)
		if err != nil {
			return err
		}

		status := p.track(client.Name())
		p.specs[client.Name()] = client.Spec()

		raw, err := client.Fetch(ctx)
		if err != nil {
			p.fail(status, err)
			p.Log.Warn("source unavailable, continuing without it",
				"source", client.Name(), "error", err)
			continue
		}

		p.markFetched(status, raw)
		p.Log.Info("fetched source",
			"source", client.Name(), "records", len(raw.Records))
	}
	return nil
}

// ProcessAll projects and deduplicates every fetched source. A failure
// leaves the source in the fetched state with its error recorded, so the
// merge skips it.
func (p *Pipeline) ProcessAll() {
	for _, name := range p.sourceOrder() {
		st := p.lookup(name)
		if st == nil || st.State != model.StateFetched || st.Raw == nil {
			continue
		}
		spec, ok := p.specs[name]
		if !ok {
			continue
		}

		ds, err := p.process(name, spec, *st.Raw)
		if err != nil {
			p.fail(st, err)
			p.Log.Warn("processing failed, source will not merge",
				"source", name, "error", err)
			continue
		}

		p.markProcessed(st, ds)
		p.Log.Info("processed source",
			"source", name, "pairs", len(ds.Records), "dropped", ds.Dropped)
	}
}

func (p *Pipeline) process(name string, spec source.Spec, raw model.RawRecordSet) (model.DeduplicatedDataset, error) {
	canon := spec.Fields.Defaults()
	ida, idb := spec.Fields.Identity()

	popts := project.Options{
		Source:    name,
		Selected:  spec.Fields.SelectedFields(),
		Defaults:  canon,
		IdentityA: ida,
		IdentityB: idb,
	}
	if spec.FilterReviewed {
		popts.Allow = p.allow
	}
	if spec.ScrubCitations && spec.Citations != "" {
		popts.DropUnassigned = []string{canon[spec.Citations]}
	}

	projected, err := project.NewProjector(popts).Project(raw)
	if err != nil {
		return model.DeduplicatedDataset{}, err
	}

	dopts := dedupe.Options{
		PriorityField: canon[spec.Priority],
		Multivalued:   spec.Fields.MultivaluedColumns(),
	}
	return dedupe.NewDeduplicator(dopts).Deduplicate(projected)
}

// MergeAll folds every processed source, in configuration order, into one
// reconciled dataset. Sources that never reached the processed state are
// left out; with zero processed sources the result is empty rather than
// an error, and the Result reports which sources were skipped.
func (p *Pipeline) MergeAll() (model.MergedDataset, error) {
	var datasets []model.DeduplicatedDataset
	for _, name := range p.sourceOrder() {
		st := p.lookup(name)
		if st == nil || st.State != model.StateProcessed || st.Dataset == nil {
			continue
		}
		datasets = append(datasets, *st.Dataset)
	}

	rules, integers := p.mergeRules()
	merged, err := merge.NewMerger(merge.Options{
		Rules:          rules,
		IntegerColumns: integers,
	}).MergeAll(datasets)
	if err != nil {
		return model.MergedDataset{}, err
	}

	p.merged = &merged
	p.Log.Info("merged sources",
		"sources", merged.Sources, "pairs", len(merged.Records))
	return merged, nil
}

// BuildEdges projects the merged dataset into interaction edges with
// CURIE-prefixed endpoints.
func (p *Pipeline) BuildEdges() ([]model.Edge, error) {
	if p.merged == nil {
		return nil, model.NewConfigurationError("build_edges", "merge has not run")
	}

	stream := emit.NewEdgeStream(*p.merged, emit.Options{
		Label:    interactionLabel,
		Prefix:   uniprotPrefix,
		Prefixer: idmap.Prefix,
	})

	var edges []model.Edge
	for stream.Next() {
		edges = append(edges, stream.Edge())
	}

	p.interactions = edges
	p.Log.Info("projected interaction edges", "edges", len(edges))
	return edges, nil
}

// EnrichKegg attaches pathway context: one vertex per KEGG pathway plus
// membership edges anchored on the annotation catalog's gene vertices.
// Disabled unless an organism code is configured.
func (p *Pipeline) EnrichKegg(ctx context.Context) error {
	org := p.Config.Kegg.Organism
	if org == "" {
		return nil
	}

	client := kegg.NewClient(p.Config.Kegg.BaseURL, p.Fetcher, p.Log)
	set, err := client.LinkSet(ctx, kegg.DBGene, kegg.DBPathway, org)
	if err != nil {
		return fmt.Errorf("failed to build the KEGG pathway link set: %w", err)
	}

	p.keggNodes = pathwayNodes(set)
	p.keggEdges = kegg.Edges(set, kegg.EdgeOptions{
		Label:        pathwayEdgeLabel,
		SourceXref:   "ncbi_gene_id",
		SourcePrefix: genePrefix,
		TargetPrefix: kegg.PrefixFor(kegg.DBPathway),
	})

	p.Log.Info("KEGG enrichment complete",
		"pathways", len(p.keggNodes), "edges", len(p.keggEdges))
	return nil
}

// DetectCommunities clusters the interaction network; protein complexes
// and functional units surface as densely connected groups.
func (p *Pipeline) DetectCommunities() ([][]string, error) {
	seen := map[string]struct{}{}
	var ids []string
	for _, e := range p.interactions {
		for _, id := range [2]string{e.SourceID, e.TargetID} {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	communities, err := p.Detector.Detect(ids, p.interactions)
	if err != nil {
		return nil, err
	}

	p.communities = communities
	p.Log.Info("community detection complete", "communities", len(communities))
	return communities, nil
}

// Export writes the per-source pair tables, the merged table, the
// interaction edge list and the community membership table as CSV files,
// returning the paths written.
func (p *Pipeline) Export() ([]string, error) {
	if p.merged == nil {
		return nil, model.NewConfigurationError("export", "nothing to export, run a build first")
	}

	w := export.NewWriter(p.Config.Export.Dir, p.Log)
	var files []string

	for _, name := range p.sourceOrder() {
		st := p.lookup(name)
		if st == nil || st.Dataset == nil {
			continue
		}
		path, err := w.WriteDataset(name, st.Dataset.Fields, st.Dataset.Records)
		if err != nil {
			return nil, err
		}
		files = append(files, path)
	}

	path, err := w.WriteDataset("PPI", p.merged.Fields, p.merged.Records)
	if err != nil {
		return nil, err
	}
	files = append(files, path)

	if len(p.interactions) > 0 {
		if path, err = w.WriteEdges("edges", p.interactions); err != nil {
			return nil, err
		}
		files = append(files, path)
	}

	if len(p.communities) > 0 {
		var recs []model.Record
		for i, members := range p.communities {
			for _, id := range members {
				recs = append(recs, model.Record{
					"community": strconv.Itoa(i + 1),
					"protein":   id,
				})
			}
		}
		if path, err = w.WriteDataset("communities", []string{"community", "protein"}, recs); err != nil {
			return nil, err
		}
		files = append(files, path)
	}

	return files, nil
}

// Load publishes the build into the graph store: indices first, then
// vertices, then relationships.
func (p *Pipeline) Load(ctx context.Context, d driver.GraphDriver) error {
	if err := d.BuildIndices(ctx); err != nil {
		return err
	}
	if err := d.LoadNodes(ctx, p.Nodes()); err != nil {
		return err
	}
	return d.LoadEdges(ctx, p.Edges())
}

// Merged returns the reconciled dataset, nil before MergeAll.
func (p *Pipeline) Merged() *model.MergedDataset { return p.merged }

// Interactions returns the reconciled interaction edges.
func (p *Pipeline) Interactions() []model.Edge { return p.interactions }

// Communities returns the detected interaction communities.
func (p *Pipeline) Communities() [][]string { return p.communities }

// Nodes returns every vertex the build produced: annotation proteins,
// genes and organisms plus KEGG pathways.
func (p *Pipeline) Nodes() []model.Node {
	out := make([]model.Node, 0, len(p.nodes)+len(p.keggNodes))
	out = append(out, p.nodes...)
	out = append(out, p.keggNodes...)
	return out
}

// Edges returns every relationship the build produced: interactions,
// annotation links and pathway memberships.
func (p *Pipeline) Edges() []model.Edge {
	out := make([]model.Edge, 0, len(p.interactions)+len(p.annotations)+len(p.keggEdges))
	out = append(out, p.interactions...)
	out = append(out, p.annotations...)
	out = append(out, p.keggEdges...)
	return out
}

// mergeRules derives the reconciliation rules from the participating
// specs: provenance columns join, citation columns token-union, method
// columns join. Integer columns accumulate across specs so score fields
// survive the fold as integral text.
func (p *Pipeline) mergeRules() ([]merge.Rule, []string) {
	prov := map[string]string{}
	cits := map[string]string{}
	methods := map[string]string{}
	var integers []string

	order := p.sourceOrder()
	for _, name := range order {
		spec, ok := p.specs[name]
		if !ok {
			continue
		}
		canon := spec.Fields.Defaults()
		if spec.Provenance != "" {
			prov[name] = canon[spec.Provenance]
		}
		if spec.Citations != "" {
			cits[name] = canon[spec.Citations]
		}
		if spec.Method != "" {
			methods[name] = canon[spec.Method]
		}
		integers = append(integers, spec.Fields.IntegerColumns()...)
	}

	var rules []merge.Rule
	if r, ok := buildRule(merge.KindJoin, prov, order); ok {
		rules = append(rules, r)
	}
	if r, ok := buildRule(merge.KindUnion, cits, order); ok {
		rules = append(rules, r)
	}
	if r, ok := buildRule(merge.KindJoin, methods, order); ok {
		rules = append(rules, r)
	}
	return rules, integers
}

// buildRule assembles one reconciliation rule; the merged column takes the
// first participating source's canonical name.
func buildRule(kind merge.RuleKind, columns map[string]string, order []string) (merge.Rule, bool) {
	if len(columns) == 0 {
		return merge.Rule{}, false
	}

	r := merge.Rule{Kind: kind, Columns: columns}
	for _, name := range order {
		if col, ok := columns[name]; ok {
			r.Merged = col
			break
		}
	}
	return r, true
}

// pathwayNodes builds one vertex per distinct pathway in a link set.
func pathwayNodes(set model.RawRecordSet) []model.Node {
	var nodes []model.Node
	seen := map[string]struct{}{}

	for _, rec := range set.Records {
		id, ok := rec.Text("target_id")
		if !ok {
			continue
		}
		curie := idmap.Prefix(kegg.PrefixFor(kegg.DBPathway), id)
		if _, dup := seen[curie]; dup {
			continue
		}
		seen[curie] = struct{}{}

		props := map[string]interface{}{}
		if name, ok := rec.Text("target_name"); ok {
			props["name"] = name
		}
		nodes = append(nodes, model.Node{ID: curie, Label: pathwayNodeLabel, Props: props})
	}

	return nodes
}

func (p *Pipeline) sourceNames() []string {
	if len(p.Config.Pipeline.Sources) > 0 {
		return p.Config.Pipeline.Sources
	}
	return []string{"intact", "biogrid", "string"}
}

// track registers a source in the state machine, preserving first-seen
// order for every later stage.
func (p *Pipeline) track(name string) *model.SourceStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	if st, ok := p.statuses[name]; ok {
		return st
	}
	st := &model.SourceStatus{Name: name}
	p.statuses[name] = st
	p.order = append(p.order, name)
	return st
}

func (p *Pipeline) lookup(name string) *model.SourceStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.statuses[name]
}

func (p *Pipeline) sourceOrder() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.order...)
}

func (p *Pipeline) markFetched(st *model.SourceStatus, raw model.RawRecordSet) {
	p.mu.Lock()
	defer p.mu.Unlock()
	st.MarkFetched(raw)
}

func (p *Pipeline) markProcessed(st *model.SourceStatus, ds model.DeduplicatedDataset) {
	p.mu.Lock()
	defer p.mu.Unlock()
	st.MarkProcessed(ds)
}

func (p *Pipeline) fail(st *model.SourceStatus, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	st.MarkFailed(err)
}
