package board

import "fmt"

// InterfaceType is an electrical signal type a board exposes
type InterfaceType string

const (
	GPIO InterfaceType = "GPIO"
	ADC  InterfaceType = "ADC"
	PWM  InterfaceType = "PWM"
	UART InterfaceType = "UART"
	I2C  InterfaceType = "I2C"
	SPI  InterfaceType = "SPI"
	PIO  InterfaceType = "PIO"
	I2S  InterfaceType = "I2S"
	USB  InterfaceType = "USB"
)

// InterfaceTypes lists every known type, in display order
var InterfaceTypes = []InterfaceType{GPIO, ADC, PWM, UART, I2C, SPI, PIO, I2S, USB}

// Direction is the signal direction of an interface
type Direction string

const (
	Input         Direction = "input"
	Output        Direction = "output"
	Bidirectional Direction = "bidirectional"
)

// Interface is a signal type plus direction
type Interface struct {
	Type      InterfaceType `toml:"type" json:"type"`
	Direction Direction     `toml:"direction,omitempty" json:"direction,omitempty"`
}

func (i Interface) String() string {
	if i.Direction == "" {
		return string(i.Type)
	}
	return fmt.Sprintf("%s(%s)", i.Type, i.Direction)
}

// ParseInterfaceType accepts the names in InterfaceTypes
func ParseInterfaceType(s string) (InterfaceType, error) {
	for _, t := range InterfaceTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown interface type %q", s)
}

// ParseDirection accepts input, output, bidirectional or the empty string
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case "", Input, Output, Bidirectional:
		return Direction(s), nil
	}
	return "", fmt.Errorf("unknown interface direction %q", s)
}

// InterfaceMapping maps an interface to the pins carrying it
type InterfaceMapping struct {
	Interface Interface `toml:"interface" json:"interface"`
	Pins      []int     `toml:"pins" json:"pins,omitempty"`
}

// Pinout is the list of interfaces available on a board
type Pinout []InterfaceMapping

// Has reports whether the pinout offers an interface of type t
func (p Pinout) Has(t InterfaceType) bool {
	for _, m := range p {
		if m.Interface.Type == t {
			return true
		}
	}
	return false
}
