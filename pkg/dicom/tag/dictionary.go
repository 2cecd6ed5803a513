package tag

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Dictionary resolves human-readable keywords to canonical (group, element)
// tags and back. It is built once and read-only afterwards; components that
// need keyword resolution take a *Dictionary rather than reaching for a
// package-level table.
type Dictionary struct {
	byKeyword map[string]entry
	byTag     map[Tag]entry
}

type entry struct {
	Keyword string
	Tag     Tag
	VR      string // default VR, used for implicit VR reading and display
}

var (
	hexForm  = regexp.MustCompile(`^(?:0[xX])?([0-9a-fA-F]{8})$`)
	pairForm = regexp.MustCompile(`^\(?([0-9a-fA-F]{4}),\s*([0-9a-fA-F]{4})\)?$`)
)

// NewDictionary returns the standard dictionary covering the tags defined in
// this package.
func NewDictionary() *Dictionary {
	d := &Dictionary{
		byKeyword: make(map[string]entry, len(standardEntries)),
		byTag:     make(map[Tag]entry, len(standardEntries)),
	}
	for _, e := range standardEntries {
		d.byKeyword[strings.ToLower(e.Keyword)] = e
		d.byTag[e.Tag] = e
	}
	return d
}

// Parse resolves a textual tag to its canonical identity. Accepted forms:
// a dictionary keyword (RepetitionTime), a combined hex number (0x00180080
// or 00180080), or a group/element pair ((0018,0080) or 0018,0080).
func (d *Dictionary) Parse(s string) (Tag, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Tag{}, fmt.Errorf("empty tag")
	}
	if m := hexForm.FindStringSubmatch(s); m != nil {
		v, err := strconv.ParseUint(m[1], 16, 32)
		if err != nil {
			return Tag{}, fmt.Errorf("invalid tag %q: %w", s, err)
		}
		return Tag{Group: uint16(v >> 16), Element: uint16(v)}, nil
	}
	if m := pairForm.FindStringSubmatch(s); m != nil {
		g, err := strconv.ParseUint(m[1], 16, 16)
		if err != nil {
			return Tag{}, fmt.Errorf("invalid tag group %q: %w", s, err)
		}
		e, err := strconv.ParseUint(m[2], 16, 16)
		if err != nil {
			return Tag{}, fmt.Errorf("invalid tag element %q: %w", s, err)
		}
		return Tag{Group: uint16(g), Element: uint16(e)}, nil
	}
	if e, ok := d.byKeyword[strings.ToLower(s)]; ok {
		return e.Tag, nil
	}
	return Tag{}, fmt.Errorf("unknown tag keyword %q", s)
}

// ParseGroup resolves a textual group number (0x0018 or 0018).
func (d *Dictionary) ParseGroup(s string) (uint16, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"))
	if s == "" {
		return 0, fmt.Errorf("empty group")
	}
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid group %q: %w", s, err)
	}
	return uint16(v), nil
}

// Keyword returns the keyword for a tag, or "" if unknown
func (d *Dictionary) Keyword(t Tag) string {
	return d.byTag[t].Keyword
}

// DefaultVR returns the dictionary VR for a tag, or "" if unknown
func (d *Dictionary) DefaultVR(t Tag) string {
	return d.byTag[t].VR
}

// Keywords returns all known keywords, sorted
func (d *Dictionary) Keywords() []string {
	out := make([]string, 0, len(d.byKeyword))
	for _, e := range d.byKeyword {
		out = append(out, e.Keyword)
	}
	sort.Strings(out)
	return out
}

var standardEntries = []entry{
	{"FileMetaInformationGroupLength", FileMetaInformationGroupLength, "UL"},
	{"FileMetaInformationVersion", FileMetaInformationVersion, "OB"},
	{"MediaStorageSOPClassUID", MediaStorageSOPClassUID, "UI"},
	{"MediaStorageSOPInstanceUID", MediaStorageSOPInstanceUID, "UI"},
	{"TransferSyntaxUID", TransferSyntaxUID, "UI"},
	{"ImplementationClassUID", ImplementationClassUID, "UI"},
	{"ImplementationVersionName", ImplementationVersionName, "SH"},
	{"SpecificCharacterSet", SpecificCharacterSet, "CS"},

	{"PatientName", PatientName, "PN"},
	{"PatientID", PatientID, "LO"},
	{"PatientBirthDate", PatientBirthDate, "DA"},
	{"PatientSex", PatientSex, "CS"},
	{"PatientAge", PatientAge, "AS"},
	{"PatientWeight", PatientWeight, "DS"},
	{"PatientComments", PatientComments, "LT"},

	{"StudyDate", StudyDate, "DA"},
	{"StudyTime", StudyTime, "TM"},
	{"AccessionNumber", AccessionNumber, "SH"},
	{"StudyDescription", StudyDescription, "LO"},
	{"StudyInstanceUID", StudyInstanceUID, "UI"},
	{"StudyID", StudyID, "SH"},

	{"Modality", Modality, "CS"},
	{"SeriesInstanceUID", SeriesInstanceUID, "UI"},
	{"SeriesNumber", SeriesNumber, "IS"},
	{"InstanceNumber", InstanceNumber, "IS"},
	{"SeriesDescription", SeriesDescription, "LO"},
	{"SeriesDate", SeriesDate, "DA"},
	{"SeriesTime", SeriesTime, "TM"},
	{"ProtocolName", ProtocolName, "LO"},
	{"BodyPartExamined", BodyPartExamined, "CS"},
	{"PatientPosition", PatientPosition, "CS"},
	{"PresentationIntentType", PresentationIntentType, "CS"},

	{"Manufacturer", Manufacturer, "LO"},
	{"InstitutionName", InstitutionName, "LO"},
	{"StationName", StationName, "SH"},
	{"ManufacturerModelName", ManufacturerModelName, "LO"},
	{"DeviceSerialNumber", DeviceSerialNumber, "LO"},
	{"SoftwareVersions", SoftwareVersions, "LO"},
	{"MagneticFieldStrength", MagneticFieldStrength, "DS"},

	{"ScanningSequence", ScanningSequence, "CS"},
	{"SequenceVariant", SequenceVariant, "CS"},
	{"ScanOptions", ScanOptions, "CS"},
	{"MRAcquisitionType", MRAcquisitionType, "CS"},
	{"SequenceName", SequenceName, "SH"},
	{"RepetitionTime", RepetitionTime, "DS"},
	{"EchoTime", EchoTime, "DS"},
	{"InversionTime", InversionTime, "DS"},
	{"NumberOfAverages", NumberOfAverages, "DS"},
	{"ImagingFrequency", ImagingFrequency, "DS"},
	{"EchoNumbers", EchoNumbers, "IS"},
	{"NumberOfPhaseEncodingSteps", NumberOfPhaseEncodingSteps, "IS"},
	{"EchoTrainLength", EchoTrainLength, "IS"},
	{"PercentSampling", PercentSampling, "DS"},
	{"PercentPhaseFieldOfView", PercentPhaseFieldOfView, "DS"},
	{"PixelBandwidth", PixelBandwidth, "DS"},
	{"FlipAngle", FlipAngle, "DS"},
	{"SAR", SAR, "DS"},

	{"KVP", KVP, "DS"},
	{"DataCollectionDiameter", DataCollectionDiameter, "DS"},
	{"ReconstructionDiameter", ReconstructionDiameter, "DS"},
	{"ConvolutionKernel", ConvolutionKernel, "SH"},
	{"ExposureTime", ExposureTime, "IS"},
	{"XRayTubeCurrent", XRayTubeCurrent, "IS"},
	{"Exposure", Exposure, "IS"},
	{"FilterType", FilterType, "SH"},
	{"GeneratorPower", GeneratorPower, "IS"},
	{"GantryDetectorTilt", GantryDetectorTilt, "DS"},
	{"TableHeight", TableHeight, "DS"},
	{"RotationDirection", RotationDirection, "CS"},
	{"SliceThickness", SliceThickness, "DS"},
	{"SpacingBetweenSlices", SpacingBetweenSlices, "DS"},
	{"DateOfLastCalibration", DateOfLastCalibration, "DA"},
	{"TimeOfLastCalibration", TimeOfLastCalibration, "TM"},

	{"SOPClassUID", SOPClassUID, "UI"},
	{"SOPInstanceUID", SOPInstanceUID, "UI"},
	{"InstanceCreationDate", InstanceCreationDate, "DA"},
	{"InstanceCreationTime", InstanceCreationTime, "TM"},

	{"FrameOfReferenceUID", FrameOfReferenceUID, "UI"},
	{"PositionReferenceIndicator", PositionReferenceIndicator, "LO"},

	{"SamplesPerPixel", SamplesPerPixel, "US"},
	{"PhotometricInterpretation", PhotometricInterpretation, "CS"},
	{"NumberOfFrames", NumberOfFrames, "IS"},
	{"Rows", Rows, "US"},
	{"Columns", Columns, "US"},
	{"PixelSpacing", PixelSpacing, "DS"},
	{"BitsAllocated", BitsAllocated, "US"},
	{"BitsStored", BitsStored, "US"},
	{"HighBit", HighBit, "US"},
	{"PixelRepresentation", PixelRepresentation, "US"},
	{"PixelData", PixelData, "OW"},

	{"ImageType", ImageType, "CS"},
	{"WindowCenter", WindowCenter, "DS"},
	{"WindowWidth", WindowWidth, "DS"},
	{"RescaleIntercept", RescaleIntercept, "DS"},
	{"RescaleSlope", RescaleSlope, "DS"},
	{"RescaleType", RescaleType, "LO"},

	{"ImagePositionPatient", ImagePositionPatient, "DS"},
	{"ImageOrientationPatient", ImageOrientationPatient, "DS"},
	{"SliceLocation", SliceLocation, "DS"},
	{"ImageComments", ImageComments, "LT"},

	{"ContentDate", ContentDate, "DA"},
	{"ContentTime", ContentTime, "TM"},
	{"AcquisitionDate", AcquisitionDate, "DA"},
	{"AcquisitionTime", AcquisitionTime, "TM"},

	{"ReferencedSOPClassUID", ReferencedSOPClassUID, "UI"},
	{"ReferencedSOPInstanceUID", ReferencedSOPInstanceUID, "UI"},
	{"ReferencedSeriesSequence", ReferencedSeriesSequence, "SQ"},
	{"ReferencedImageSequence", ReferencedImageSequence, "SQ"},
	{"ReferencedStudySequence", ReferencedStudySequence, "SQ"},
	{"RequestAttributesSequence", RequestAttributesSequence, "SQ"},
}
