// Package diff implements the dcmdiff comparison core: hierarchy indexing,
// series matching, attribute filtering, instance comparison and report
// aggregation. The package is synchronous and deterministic; the only
// external decision points are the Selector and Resolver capabilities.
package diff

import (
	"fmt"

	"github.com/jpfielding/dcmdiff.go/pkg/dicom"
)

// Instance is one loaded DICOM object: its identity within the
// patient/study/series hierarchy plus the attribute set under comparison.
// Immutable once loaded.
type Instance struct {
	SOPInstanceUID string
	Number         int // InstanceNumber, 1 when absent

	PatientID   string
	PatientName string

	StudyUID         string
	StudyDescription string
	StudyDateTime    string

	SeriesUID         string
	SeriesNumber      int
	Modality          string
	SeriesDescription string

	Attrs *dicom.Dataset
}

// Series is an ordered group of instances sharing acquisition context
type Series struct {
	UID         string
	Number      int
	Modality    string
	Description string
	StudyUID    string
	Instances   []*Instance
}

// Label renders the series the way it is presented to users: NNNN-Modality-Description
func (s *Series) Label() string {
	return fmt.Sprintf("%04d-%s-%s", s.Number, s.Modality, s.Description)
}

// Study is a group of series belonging to one examination
type Study struct {
	UID         string
	Description string
	DateTime    string
	Series      []*Series
}

// Label renders the study for selection menus
func (s *Study) Label() string {
	return fmt.Sprintf("%s-%s", s.DateTime, s.Description)
}

// Patient groups the studies of one subject
type Patient struct {
	ID      string
	Name    string
	Studies []*Study
}

// Label renders the patient for selection menus
func (p *Patient) Label() string {
	return fmt.Sprintf("%s-%s", p.ID, p.Name)
}

// Hierarchy is the indexed Patient -> Study -> Series -> Instance grouping
// of one side's instances. Read-only for the lifetime of a comparison run.
type Hierarchy struct {
	Patients []*Patient
}

// Selector chooses one patient and one study per side when a source holds
// more than one. Implementations are interactive; tests substitute scripted
// fakes.
type Selector interface {
	SelectPatient(patients []*Patient) (*Patient, error)
	SelectStudy(studies []*Study) (*Study, error)
}

// Index groups instances into Patient -> Study -> Series buckets.
// Grouping is independent of input order; intra-series instance order is
// preserved from input. An instance missing its patient, study or series
// linkage fails the whole index with MalformedHierarchyError.
func Index(instances []*Instance) (*Hierarchy, error) {
	h := &Hierarchy{}
	patients := map[string]*Patient{}
	studies := map[string]*Study{}
	series := map[string]*Series{}

	for _, inst := range instances {
		switch {
		case inst.PatientID == "":
			return nil, &MalformedHierarchyError{SOPInstanceUID: inst.SOPInstanceUID, Missing: "patient"}
		case inst.StudyUID == "":
			return nil, &MalformedHierarchyError{SOPInstanceUID: inst.SOPInstanceUID, Missing: "study"}
		case inst.SeriesUID == "":
			return nil, &MalformedHierarchyError{SOPInstanceUID: inst.SOPInstanceUID, Missing: "series"}
		}

		pat, ok := patients[inst.PatientID]
		if !ok {
			pat = &Patient{ID: inst.PatientID, Name: inst.PatientName}
			patients[inst.PatientID] = pat
			h.Patients = append(h.Patients, pat)
		}

		// Study UIDs are globally unique so a flat lookup suffices
		st, ok := studies[inst.StudyUID]
		if !ok {
			st = &Study{
				UID:         inst.StudyUID,
				Description: inst.StudyDescription,
				DateTime:    inst.StudyDateTime,
			}
			studies[inst.StudyUID] = st
			pat.Studies = append(pat.Studies, st)
		}

		se, ok := series[inst.SeriesUID]
		if !ok {
			se = &Series{
				UID:         inst.SeriesUID,
				Number:      inst.SeriesNumber,
				Modality:    inst.Modality,
				Description: inst.SeriesDescription,
				StudyUID:    inst.StudyUID,
			}
			series[inst.SeriesUID] = se
			st.Series = append(st.Series, se)
		}

		se.Instances = append(se.Instances, inst)
	}

	return h, nil
}

// ChooseStudy picks the one study to compare: automatic when the hierarchy
// holds a single patient with a single study, otherwise the selector decides.
func (h *Hierarchy) ChooseStudy(sel Selector) (*Study, error) {
	if len(h.Patients) == 0 {
		return nil, fmt.Errorf("hierarchy holds no patients")
	}

	pat := h.Patients[0]
	if len(h.Patients) > 1 {
		chosen, err := sel.SelectPatient(h.Patients)
		if err != nil {
			return nil, fmt.Errorf("patient selection: %w", err)
		}
		if chosen == nil {
			return nil, fmt.Errorf("no patient selected")
		}
		pat = chosen
	}

	if len(pat.Studies) == 0 {
		return nil, fmt.Errorf("patient %s holds no studies", pat.ID)
	}
	st := pat.Studies[0]
	if len(pat.Studies) > 1 {
		chosen, err := sel.SelectStudy(pat.Studies)
		if err != nil {
			return nil, fmt.Errorf("study selection: %w", err)
		}
		if chosen == nil {
			return nil, fmt.Errorf("no study selected")
		}
		st = chosen
	}
	return st, nil
}
