package diff

// InstanceDiff is the comparison of one reference instance against its
// paired test instance. Test is nil when no pairing was found or chosen;
// Records is then empty.
type InstanceDiff struct {
	Ref     *Instance
	Test    *Instance
	Records []DiffRecord
}

// SeriesDiff collects the instance diffs of one series match, in the
// reference series' instance order
type SeriesDiff struct {
	Match     SeriesMatch
	Instances []InstanceDiff
}

// StudyDiff is the full comparison of one study pair: series in matcher
// order, instances in indexer order, tags in comparator order. The renderer
// depends on this ordering for reproducible output.
type StudyDiff struct {
	Ref    *Study
	Test   *Study
	Series []SeriesDiff
}

// Summary counts record statuses across a diff scope, nested sequence
// items included
type Summary struct {
	Equal    int
	Ignored  int
	Differ   int
	OnlyRef  int
	OnlyTest int
}

// Changed reports whether the scope holds any difference or one-sided tag
func (s Summary) Changed() bool {
	return s.Differ > 0 || s.OnlyRef > 0 || s.OnlyTest > 0
}

func (s *Summary) addRecords(records []DiffRecord) {
	for _, r := range records {
		switch r.Status {
		case Equal:
			s.Equal++
		case EqualIgnored:
			s.Ignored++
		case Differ:
			s.Differ++
		case OnlyInReference:
			s.OnlyRef++
		case OnlyInTest:
			s.OnlyTest++
		}
		for _, item := range r.Items {
			s.addRecords(item.Records)
		}
	}
}

// Summary tallies one instance pair
func (d InstanceDiff) Summary() Summary {
	var s Summary
	s.addRecords(d.Records)
	return s
}

// Summary tallies one series match
func (d SeriesDiff) Summary() Summary {
	var s Summary
	for _, inst := range d.Instances {
		s.addRecords(inst.Records)
	}
	return s
}

// Summary tallies the whole study comparison
func (d StudyDiff) Summary() Summary {
	var s Summary
	for _, se := range d.Series {
		for _, inst := range se.Instances {
			s.addRecords(inst.Records)
		}
	}
	return s
}
