package cli

import (
	"ft/internal/feature"
)

// runTransition is the shared write path: scan a fresh snapshot, validate
// the transition against it, then apply the persistence instructions (which
// re-validate under the repository lock). Returns the updated record.
func runTransition(cfg *feature.Config, id string, action feature.Action, opts feature.TransitionOptions) (feature.Record, error) {
	idx, err := feature.Scan(cfg.FeaturesDirAbs, cfg.CompletedDirAbs)
	if err != nil {
		return feature.Record{}, err
	}

	res, err := feature.Transition(idx, id, action, opts)
	if err != nil {
		return feature.Record{}, err
	}

	err = feature.Apply(*cfg, res)
	if err != nil {
		return feature.Record{}, err
	}

	return res.Record, nil
}

// warnViolations surfaces scanner violations without aborting; the tool
// still produces best-effort output for an inconsistent repository.
func warnViolations(o *IO, violations []feature.Violation) {
	for _, v := range violations {
		switch v.Kind {
		case feature.ViolationMultipleActive:
			o.WarnLLM(v.Detail, "pause all but one with 'ft pause <id>'")
		case feature.ViolationDuplicateID:
			o.WarnLLM("duplicate identifier "+v.ID+" ("+v.Detail+")", "rename one of the files")
		}
	}
}

func warnParse(o *IO, warnings []feature.RecordWarning) {
	for _, w := range warnings {
		o.WarnLLM(w.ID+": "+w.Warning.String(), "fix the feature file metadata")
	}
}
