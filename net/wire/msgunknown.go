package wire

import "io"

// MsgUnknown carries a well-framed message whose command this package does
// not model. The payload is kept verbatim.
type MsgUnknown struct {
	Cmd     string
	Payload []byte
}

func (msg *MsgUnknown) Decode(r io.Reader, pver uint32) error {
	payload, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	msg.Payload = payload
	return nil
}

func (msg *MsgUnknown) Encode(w io.Writer, pver uint32) error {
	_, err := w.Write(msg.Payload)
	return err
}

func (msg *MsgUnknown) Command() string {
	return msg.Cmd
}

func (msg *MsgUnknown) MaxPayloadLength(pver uint32) uint32 {
	return MaxMessagePayload
}
