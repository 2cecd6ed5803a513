// Package tag defines standard DICOM tags and the keyword dictionary
package tag

// Tag represents a DICOM tag with Group and Element
type Tag struct {
	Group   uint16
	Element uint16
}

// New creates a new Tag
func New(group, element uint16) Tag {
	return Tag{Group: group, Element: element}
}

// Equals compares two tags
func (t Tag) Equals(other Tag) bool {
	return t.Group == other.Group && t.Element == other.Element
}

// Compare orders tags ascending by (Group, Element): -1, 0 or 1
func (t Tag) Compare(other Tag) int {
	switch {
	case t.Group < other.Group:
		return -1
	case t.Group > other.Group:
		return 1
	case t.Element < other.Element:
		return -1
	case t.Element > other.Element:
		return 1
	}
	return 0
}

// IsPrivate returns true if this is a private tag (odd group number)
func (t Tag) IsPrivate() bool {
	return t.Group%2 == 1
}

// IsGroup0002 returns true if this tag is in the File Meta Information group
func (t Tag) IsGroup0002() bool {
	return t.Group == 0x0002
}

// Standard DICOM Tags - File Meta Information (Group 0002)
var (
	FileMetaInformationGroupLength = Tag{0x0002, 0x0000}
	FileMetaInformationVersion     = Tag{0x0002, 0x0001}
	MediaStorageSOPClassUID        = Tag{0x0002, 0x0002}
	MediaStorageSOPInstanceUID     = Tag{0x0002, 0x0003}
	TransferSyntaxUID              = Tag{0x0002, 0x0010}
	ImplementationClassUID         = Tag{0x0002, 0x0012}
	ImplementationVersionName      = Tag{0x0002, 0x0013}
	SpecificCharacterSet           = Tag{0x0008, 0x0005}
)

// Patient Module (Group 0010)
var (
	PatientName      = Tag{0x0010, 0x0010}
	PatientID        = Tag{0x0010, 0x0020}
	PatientBirthDate = Tag{0x0010, 0x0030}
	PatientSex       = Tag{0x0010, 0x0040}
	PatientAge       = Tag{0x0010, 0x1010}
	PatientWeight    = Tag{0x0010, 0x1030}
	PatientComments  = Tag{0x0010, 0x4000}
)

// General Study Module (Group 0008, 0020)
var (
	StudyDate        = Tag{0x0008, 0x0020}
	StudyTime        = Tag{0x0008, 0x0030}
	AccessionNumber  = Tag{0x0008, 0x0050}
	StudyDescription = Tag{0x0008, 0x1030}
	StudyInstanceUID = Tag{0x0020, 0x000D}
	StudyID          = Tag{0x0020, 0x0010}
)

// General Series Module
var (
	Modality               = Tag{0x0008, 0x0060}
	SeriesInstanceUID      = Tag{0x0020, 0x000E}
	SeriesNumber           = Tag{0x0020, 0x0011}
	InstanceNumber         = Tag{0x0020, 0x0013}
	SeriesDescription      = Tag{0x0008, 0x103E}
	SeriesDate             = Tag{0x0008, 0x0021}
	SeriesTime             = Tag{0x0008, 0x0031}
	ProtocolName           = Tag{0x0018, 0x1030}
	BodyPartExamined       = Tag{0x0018, 0x0015}
	PatientPosition        = Tag{0x0018, 0x5100}
	PresentationIntentType = Tag{0x0008, 0x0068}
)

// General Equipment Module
var (
	Manufacturer          = Tag{0x0008, 0x0070}
	InstitutionName       = Tag{0x0008, 0x0080}
	StationName           = Tag{0x0008, 0x1010}
	ManufacturerModelName = Tag{0x0008, 0x1090}
	DeviceSerialNumber    = Tag{0x0018, 0x1000}
	SoftwareVersions      = Tag{0x0018, 0x1020}
	MagneticFieldStrength = Tag{0x0018, 0x0087}
)

// MR Acquisition Parameters (Group 0018)
var (
	ScanningSequence           = Tag{0x0018, 0x0020}
	SequenceVariant            = Tag{0x0018, 0x0021}
	ScanOptions                = Tag{0x0018, 0x0022}
	MRAcquisitionType          = Tag{0x0018, 0x0023}
	SequenceName               = Tag{0x0018, 0x0024}
	RepetitionTime             = Tag{0x0018, 0x0080}
	EchoTime                   = Tag{0x0018, 0x0081}
	InversionTime              = Tag{0x0018, 0x0082}
	NumberOfAverages           = Tag{0x0018, 0x0083}
	ImagingFrequency           = Tag{0x0018, 0x0084}
	EchoNumbers                = Tag{0x0018, 0x0086}
	NumberOfPhaseEncodingSteps = Tag{0x0018, 0x0089}
	EchoTrainLength            = Tag{0x0018, 0x0091}
	PercentSampling            = Tag{0x0018, 0x0093}
	PercentPhaseFieldOfView    = Tag{0x0018, 0x0094}
	PixelBandwidth             = Tag{0x0018, 0x0095}
	FlipAngle                  = Tag{0x0018, 0x1314}
	SAR                        = Tag{0x0018, 0x1316}
)

// X-Ray / CT Acquisition Parameters
var (
	KVP                    = Tag{0x0018, 0x0060}
	DataCollectionDiameter = Tag{0x0018, 0x0090}
	ReconstructionDiameter = Tag{0x0018, 0x1100}
	ConvolutionKernel      = Tag{0x0018, 0x1210}
	ExposureTime           = Tag{0x0018, 0x1150}
	XRayTubeCurrent        = Tag{0x0018, 0x1151}
	Exposure               = Tag{0x0018, 0x1152}
	FilterType             = Tag{0x0018, 0x1160}
	GeneratorPower         = Tag{0x0018, 0x1170}
	GantryDetectorTilt     = Tag{0x0018, 0x1120}
	TableHeight            = Tag{0x0018, 0x1130}
	RotationDirection      = Tag{0x0018, 0x1140}
	SliceThickness         = Tag{0x0018, 0x0050}
	SpacingBetweenSlices   = Tag{0x0018, 0x0088}
	DateOfLastCalibration  = Tag{0x0018, 0x1200}
	TimeOfLastCalibration  = Tag{0x0018, 0x1201}
)

// SOP Common Module
var (
	SOPClassUID          = Tag{0x0008, 0x0016}
	SOPInstanceUID       = Tag{0x0008, 0x0018}
	InstanceCreationDate = Tag{0x0008, 0x0012}
	InstanceCreationTime = Tag{0x0008, 0x0013}
)

// Frame of Reference Module
var (
	FrameOfReferenceUID        = Tag{0x0020, 0x0052}
	PositionReferenceIndicator = Tag{0x0020, 0x1040}
)

// Image Pixel Module (Group 0028)
var (
	SamplesPerPixel           = Tag{0x0028, 0x0002}
	PhotometricInterpretation = Tag{0x0028, 0x0004}
	NumberOfFrames            = Tag{0x0028, 0x0008}
	Rows                      = Tag{0x0028, 0x0010}
	Columns                   = Tag{0x0028, 0x0011}
	PixelSpacing              = Tag{0x0028, 0x0030}
	BitsAllocated             = Tag{0x0028, 0x0100}
	BitsStored                = Tag{0x0028, 0x0101}
	HighBit                   = Tag{0x0028, 0x0102}
	PixelRepresentation       = Tag{0x0028, 0x0103}
	PixelData                 = Tag{0x7FE0, 0x0010}
)

// Image display
var (
	ImageType        = Tag{0x0008, 0x0008}
	WindowCenter     = Tag{0x0028, 0x1050}
	WindowWidth      = Tag{0x0028, 0x1051}
	RescaleIntercept = Tag{0x0028, 0x1052}
	RescaleSlope     = Tag{0x0028, 0x1053}
	RescaleType      = Tag{0x0028, 0x1054}
)

// Image Position/Orientation
var (
	ImagePositionPatient    = Tag{0x0020, 0x0032}
	ImageOrientationPatient = Tag{0x0020, 0x0037}
	SliceLocation           = Tag{0x0020, 0x1041}
	ImageComments           = Tag{0x0020, 0x4000}
)

// Content Date/Time
var (
	ContentDate     = Tag{0x0008, 0x0023}
	ContentTime     = Tag{0x0008, 0x0033}
	AcquisitionDate = Tag{0x0008, 0x0022}
	AcquisitionTime = Tag{0x0008, 0x0032}
)

// Referenced object sequences
var (
	ReferencedSOPClassUID     = Tag{0x0008, 0x1150}
	ReferencedSOPInstanceUID  = Tag{0x0008, 0x1155}
	ReferencedSeriesSequence  = Tag{0x0008, 0x1115}
	ReferencedImageSequence   = Tag{0x0008, 0x1140}
	ReferencedStudySequence   = Tag{0x0008, 0x1110}
	RequestAttributesSequence = Tag{0x0040, 0x0275}
)

// Sequence delimiters
var (
	Item                     = Tag{0xFFFE, 0xE000}
	ItemDelimitationItem     = Tag{0xFFFE, 0xE00D}
	SequenceDelimitationItem = Tag{0xFFFE, 0xE0DD}
)
