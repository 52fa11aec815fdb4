package dbus

import (
	"encoding/binary"
	"fmt"
)

// MessageType identifies the kind of a D-Bus message, the second byte of
// the fixed header.
type MessageType byte

const (
	// MessageTypeInvalid is reserved; no message may use it.
	MessageTypeInvalid MessageType = iota
	// MessageTypeMethodCall may prompt a reply.
	MessageTypeMethodCall
	// MessageTypeMethodReturn carries the returned data of a method call.
	MessageTypeMethodReturn
	// MessageTypeError is an error reply to a method call.
	MessageTypeError
	// MessageTypeSignal is a signal emission.
	MessageTypeSignal
)

// Flags is a bitwise OR of message flags, the third byte of the fixed
// header.
type Flags byte

const (
	// FlagNoReplyExpected indicates the sender doesn't want a reply.
	FlagNoReplyExpected Flags = 1 << iota
	// FlagNoAutoStart tells the bus not to launch an owner for the
	// destination name if none currently exists.
	FlagNoAutoStart
	// FlagAllowInteractiveAuthorization permits interactive authorization
	// prompts in the course of handling this method call.
	FlagAllowInteractiveAuthorization
)

const knownFlags = FlagNoReplyExpected | FlagNoAutoStart | FlagAllowInteractiveAuthorization

// HeaderFieldCode identifies one of the known header field entries in the
// a(yv) header fields array.
type HeaderFieldCode byte

const (
	FieldInvalid HeaderFieldCode = iota
	// FieldPath is the object a call targets or a signal originates from.
	FieldPath
	// FieldInterface is the interface a method call or signal belongs to.
	FieldInterface
	// FieldMember is the method or signal name.
	FieldMember
	// FieldErrorName names the error for MessageTypeError replies.
	FieldErrorName
	// FieldReplySerial is the serial this message replies to.
	FieldReplySerial
	// FieldDestination names the connection this message is addressed to.
	FieldDestination
	// FieldSender names the connection that sent this message.
	FieldSender
	// FieldSignature is the body's signature; omitted means empty body.
	FieldSignature
	// FieldUnixFDs is the count of Unix file descriptors accompanying the
	// message out-of-band.
	FieldUnixFDs
)

var headerFieldNames = map[HeaderFieldCode]string{
	FieldPath:        "PATH",
	FieldInterface:   "INTERFACE",
	FieldMember:      "MEMBER",
	FieldErrorName:   "ERROR_NAME",
	FieldReplySerial: "REPLY_SERIAL",
	FieldDestination: "DESTINATION",
	FieldSender:      "SENDER",
	FieldSignature:   "SIGNATURE",
	FieldUnixFDs:     "UNIX_FDS",
}

func (c HeaderFieldCode) String() string {
	if s, ok := headerFieldNames[c]; ok {
		return s
	}
	return "INVALID"
}

// fieldTypes records the expected single-complete-type signature character
// for each known header field code, mirroring the D-Bus specification's
// table and grounded in godbus's message.go fieldTypes dispatch.
var fieldTypes = map[HeaderFieldCode]byte{
	FieldPath:        'o',
	FieldInterface:   's',
	FieldMember:      's',
	FieldErrorName:   's',
	FieldReplySerial: 'u',
	FieldDestination: 's',
	FieldSender:      's',
	FieldSignature:   'g',
	FieldUnixFDs:     'u',
}

// requiredFields maps each message type to the header fields it must
// carry, grounded in godbus's message.go requiredFields table.
var requiredFields = map[MessageType][]HeaderFieldCode{
	MessageTypeMethodCall:   {FieldPath, FieldMember},
	MessageTypeMethodReturn: {FieldReplySerial},
	MessageTypeError:        {FieldErrorName, FieldReplySerial},
	MessageTypeSignal:       {FieldPath, FieldInterface, FieldMember},
}

// HeaderField is one decoded entry of the header fields array: a field
// code followed by its variant value. Exactly one of the value fields
// is meaningful, selected by Signature.
type HeaderField struct {
	Code      HeaderFieldCode
	Signature byte

	Uint32Value uint32
	StringValue string
}

// MessageHeader is the fully decoded header of a D-Bus message: the fixed
// 16-byte prologue plus the a(yv) header fields array.
type MessageHeader struct {
	Order       binary.ByteOrder
	Type        MessageType
	Flags       Flags
	Version     byte
	BodyLen     uint32
	Serial      uint32
	FieldsLen   uint32
	Fields      []HeaderField

	// HeaderLen is the total header length including the padding that
	// brings the body to an 8-byte boundary.
	HeaderLen uint32
}

// Warning is a non-fatal observation surfaced by DecodeHeader that doesn't
// by itself invalidate the message (a zero serial on a received message is
// suspicious but not, on its own, grounds to reject decoding). Core never
// logs; callers that want visibility log Warnings themselves.
type Warning struct {
	Message string
}

const messagePrologueSize = 16
const supportedProtoVersion = 1

// DecodeHeader decodes a message header from buf, which must begin at the
// first byte of a message. It validates endianness, message type, flags,
// and protocol version in order. It performs no required-field check for
// the message type — see ValidateRequiredFields. Fields with an unknown
// code are parsed via their inline signature and then dropped; they do
// not appear in Fields.
func DecodeHeader(buf []byte, cfg Config) (*MessageHeader, []Warning, error) {
	if len(buf) < messagePrologueSize {
		return nil, nil, ErrEndOfStream
	}

	var order binary.ByteOrder
	switch buf[0] {
	case 'l':
		order = binary.LittleEndian
	case 'B':
		order = binary.BigEndian
	default:
		return nil, nil, ErrInvalidEndian
	}

	h := &MessageHeader{Order: order}

	h.Type = MessageType(buf[1])
	if h.Type == MessageTypeInvalid || h.Type > MessageTypeSignal {
		return nil, nil, ErrInvalidMsgType
	}

	h.Flags = Flags(buf[2])
	if h.Flags&^knownFlags != 0 {
		return nil, nil, ErrInvalidFlags
	}

	h.Version = buf[3]
	if h.Version != supportedProtoVersion {
		return nil, nil, ErrInvalidVersion
	}

	h.BodyLen = order.Uint32(buf[4:8])
	h.Serial = order.Uint32(buf[8:12])
	h.FieldsLen = order.Uint32(buf[12:16])

	var warnings []Warning
	if h.Serial == 0 {
		warnings = append(warnings, Warning{Message: "message serial is zero"})
	}

	total := alignUp(messagePrologueSize+int(h.FieldsLen), 8) + int(h.BodyLen)
	if uint32(total) > cfg.maxMessageSize || total < 0 {
		return nil, warnings, ErrInvalidLength
	}
	if messagePrologueSize+int(h.FieldsLen) > len(buf) {
		return nil, warnings, ErrEndOfStream
	}

	r := NewReader(buf[messagePrologueSize:messagePrologueSize+int(h.FieldsLen)], order, cfg)
	seen := make(map[HeaderFieldCode]bool)
	for r.Remaining() > 0 {
		f, err := decodeHeaderField(r)
		if err != nil {
			return nil, warnings, err
		}
		if seen[f.Code] {
			return nil, warnings, ErrDuplicateHeaderField
		}
		seen[f.Code] = true
		if _, known := fieldTypes[f.Code]; !known {
			continue
		}
		h.Fields = append(h.Fields, f)
	}

	headerEnd := alignUp(messagePrologueSize+int(h.FieldsLen), 8)
	h.HeaderLen = uint32(headerEnd)

	return h, warnings, nil
}

// ValidateRequiredFields checks that h carries every header field its
// message type requires (Path and Member for MethodCall, Path/Interface/
// Member for Signal, ErrorName and ReplySerial for Error, ReplySerial for
// MethodReturn). DecodeHeader itself performs no such check — a minimal
// method-call header with no fields at all decodes cleanly — so
// dispatchers that need to enforce message-type contracts call this
// separately.
func ValidateRequiredFields(h *MessageHeader) error {
	seen := make(map[HeaderFieldCode]bool, len(h.Fields))
	for _, f := range h.Fields {
		seen[f.Code] = true
	}
	for _, code := range requiredFields[h.Type] {
		if !seen[code] {
			return ErrRequiredFieldMissing
		}
	}
	return nil
}

// decodeHeaderField decodes one (yv) struct: a byte field code followed by
// an inline-signature variant. The 9 known field codes (fieldTypes) must
// carry their documented basic type and are decoded into HeaderField's
// typed value fields. Any other code is still self-describing — its
// signature names a single complete type regardless of what that type is
// — so it's decoded generically via parseSingle/DecodeValue and discarded,
// the same way an unrecognized header field is handled on the wire.
func decodeHeaderField(r *Reader) (HeaderField, error) {
	if err := r.AlignTo(8); err != nil {
		return HeaderField{}, err
	}

	code, err := r.Uint8()
	if err != nil {
		return HeaderField{}, err
	}

	sig, err := r.ReadSignatureBytes()
	if err != nil {
		return HeaderField{}, err
	}

	fieldCode := HeaderFieldCode(code)

	want, known := fieldTypes[fieldCode]
	if !known {
		elems, err := parseSingle([]byte(sig))
		if err != nil {
			return HeaderField{}, wrapErr(KindInvalidHeaderField, fmt.Sprintf("field code %d: signature %q", code, sig), err)
		}
		if _, _, err := DecodeValue(r, elems); err != nil {
			return HeaderField{}, wrapErr(KindInvalidHeaderField, fmt.Sprintf("field code %d: value", code), err)
		}
		var sigByte byte
		if len(sig) > 0 {
			sigByte = sig[0]
		}
		return HeaderField{Code: fieldCode, Signature: sigByte}, nil
	}

	if len(sig) != 1 || sig[0] != want {
		return HeaderField{}, newErr(KindInvalidHeaderField, fmt.Sprintf("%s: expected signature %q, got %q", fieldCode, string(rune(want)), sig))
	}

	f := HeaderField{Code: fieldCode, Signature: sig[0]}

	switch sig[0] {
	case 'u':
		v, err := r.Uint32()
		if err != nil {
			return HeaderField{}, err
		}
		f.Uint32Value = v
	case 's', 'o':
		v, err := r.ReadString(typeCode[sig[0]])
		if err != nil {
			return HeaderField{}, err
		}
		f.StringValue = v
	case 'g':
		v, err := r.ReadSignatureBytes()
		if err != nil {
			return HeaderField{}, err
		}
		f.StringValue = v
	}

	return f, nil
}

// EncodeHeader writes a message header to e: the 16-byte prologue
// (the leading byte is endianByte exactly as given; the caller picks the
// value that matches the byte order e was constructed with), the header
// fields array, and the padding that brings the body to an 8-byte
// boundary. serial must be non-zero; callers that need a fresh
// value should draw one from a wrap-safe counter, as the transport client
// does.
func EncodeHeader(e *Encoder, endianByte byte, typ MessageType, flags Flags, bodyLen, serial uint32, fields []HeaderField) {
	e.Byte(endianByte)
	e.Byte(byte(typ))
	e.Byte(byte(flags))
	e.Byte(supportedProtoVersion)
	e.Uint32(bodyLen)
	e.Uint32(serial)

	fieldsLenOffset := e.Offset()
	e.Uint32(0)

	fieldsStart := e.Offset()
	for _, f := range fields {
		encodeHeaderField(e, f)
	}
	e.Uint32At(uint32(e.Offset()-fieldsStart), fieldsLenOffset)

	e.Align(8)
}

func encodeHeaderField(e *Encoder, f HeaderField) {
	e.AlignStruct()
	e.Byte(byte(f.Code))
	e.Signature(string([]byte{f.Signature}))

	switch f.Signature {
	case 'u':
		e.Uint32(f.Uint32Value)
	case 's', 'o':
		e.String(f.StringValue)
	case 'g':
		e.Signature(f.StringValue)
	}
}
