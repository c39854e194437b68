package svb

import (
	"encoding/json"
	"fmt"

	"svbcam/pkg/svbcam"
)

// CameraInfo identifies a connected camera.
type CameraInfo struct {
	FriendlyName [32]byte
	CameraSN     [32]byte
	PortType     [32]byte
	DeviceID     uint32
	CameraID     int32
}

// NewCameraInfo fills the text fields from Go strings. Used by simulated cameras.
func NewCameraInfo(name, sn, port string, deviceID uint32, cameraID int32) CameraInfo {
	info := CameraInfo{DeviceID: deviceID, CameraID: cameraID}
	putCString(info.FriendlyName[:], name)
	putCString(info.CameraSN[:], sn)
	putCString(info.PortType[:], port)
	return info
}

func (c CameraInfo) Name() string   { return CString(c.FriendlyName[:]) }
func (c CameraInfo) Serial() string { return CString(c.CameraSN[:]) }
func (c CameraInfo) Port() string   { return CString(c.PortType[:]) }

func (c CameraInfo) String() string {
	return fmt.Sprintf("%s (SN %s, %s, device %#x, id %d)", c.Name(), c.Serial(), c.Port(), c.DeviceID, c.CameraID)
}

// MarshalJSON emits the text fields as strings.
func (c CameraInfo) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		FriendlyName string `json:"friendlyName"`
		CameraSN     string `json:"cameraSN"`
		PortType     string `json:"portType"`
		DeviceID     uint32 `json:"deviceID"`
		CameraID     int32  `json:"cameraID"`
	}{c.Name(), c.Serial(), c.Port(), c.DeviceID, c.CameraID})
}

// SerialNumber is the 64 byte serial number field.
type SerialNumber [64]byte

func (s SerialNumber) String() string { return CString(s[:]) }

// CameraProperty describes the sensor.
type CameraProperty struct {
	MaxHeight            int         `json:"maxHeight"`
	MaxWidth             int         `json:"maxWidth"`
	IsColorCam           bool        `json:"isColorCam"`
	BayerPattern         uint32      `json:"bayerPattern"`
	SupportedBins        []int       `json:"supportedBins"`
	SupportedVideoFormat []ImageType `json:"supportedVideoFormat"`
	MaxBitDepth          int         `json:"maxBitDepth"`
	IsTriggerCam         bool        `json:"isTriggerCam"`
}

// Pattern resolves the CFA code. An unknown code means the driver is broken.
func (p CameraProperty) Pattern() (svbcam.CFAPattern, error) {
	return svbcam.CFAFromCode(p.BayerPattern)
}

// Supports reports whether t is listed in SupportedVideoFormat.
func (p CameraProperty) Supports(t ImageType) bool {
	for _, f := range p.SupportedVideoFormat {
		if f == t {
			return true
		}
	}
	return false
}

// ControlType names an adjustable camera setting.
type ControlType int

const (
	Gain ControlType = iota
	Exposure
	Gamma
	GammaContrast
	WBR
	WBG
	WBB
	Flip
	FrameSpeedMode
	Contrast
	Sharpness
	Saturation
	AutoTargetBrightness
	BlackLevel
	CoolerEnable
	TargetTemperature
	CurrentTemperature
	CoolerPower
	BadPixelCorrectionEnable
)

var controlNames = [...]string{
	"Gain", "Exposure", "Gamma", "GammaContrast", "WBR", "WBG", "WBB", "Flip",
	"FrameSpeedMode", "Contrast", "Sharpness", "Saturation", "AutoTargetBrightness",
	"BlackLevel", "CoolerEnable", "TargetTemperature", "CurrentTemperature", "CoolerPower",
	"BadPixelCorrectionEnable",
}

func (c ControlType) String() string {
	if c >= 0 && int(c) < len(controlNames) {
		return controlNames[c]
	}
	return fmt.Sprintf("ControlType(%d)", int(c))
}

// ControlCaps describes the range of one control.
type ControlCaps struct {
	Name            [64]byte
	Description     [128]byte
	MaxValue        int64
	MinValue        int64
	DefaultValue    int64
	IsAutoSupported bool
	IsWritable      bool
	ControlType     ControlType
}

// NewControlCaps fills the text fields from Go strings.
func NewControlCaps(t ControlType, name, desc string, lo, hi, def int64) ControlCaps {
	c := ControlCaps{MinValue: lo, MaxValue: hi, DefaultValue: def, ControlType: t, IsWritable: true}
	putCString(c.Name[:], name)
	putCString(c.Description[:], desc)
	return c
}

func (c ControlCaps) NameString() string        { return CString(c.Name[:]) }
func (c ControlCaps) DescriptionString() string { return CString(c.Description[:]) }

// Check reports whether v may be written to the control.
func (c ControlCaps) Check(v int64) error {
	if !c.IsWritable {
		return fmt.Errorf("%w: %s is read-only", ErrInvalidControlType, c.ControlType)
	}
	if v < c.MinValue || v > c.MaxValue {
		return fmt.Errorf("%w: %s=%d outside [%d, %d]", ErrGeneral, c.ControlType, v, c.MinValue, c.MaxValue)
	}
	return nil
}

// MarshalJSON emits the text fields as strings.
func (c ControlCaps) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name            string `json:"name"`
		Description     string `json:"description"`
		MaxValue        int64  `json:"maxValue"`
		MinValue        int64  `json:"minValue"`
		DefaultValue    int64  `json:"defaultValue"`
		IsAutoSupported bool   `json:"isAutoSupported"`
		IsWritable      bool   `json:"isWritable"`
		ControlType     string `json:"controlType"`
	}{c.NameString(), c.DescriptionString(), c.MaxValue, c.MinValue, c.DefaultValue,
		c.IsAutoSupported, c.IsWritable, c.ControlType.String()})
}

// ControlState is the current value of a control.
type ControlState struct {
	Value int64 `json:"value"`
	Auto  bool  `json:"auto"`
}
