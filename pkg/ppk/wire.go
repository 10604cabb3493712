package ppk

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const prefixSize = 4

// AppendMPInt appends b to dst as an SSH mpint: a 4-byte big-endian length
// followed by the magnitude, with a leading zero byte when the top bit of
// b[0] is set so the value is never read back as negative.
func AppendMPInt(dst, b []byte) ([]byte, error) {
	if len(b) == 0 {
		return nil, errors.Wrap(ErrMissingKeyComponent, "empty integer")
	}

	pad := b[0]&0x80 != 0
	n := len(b)
	if pad {
		n++
	}

	dst = binary.BigEndian.AppendUint32(dst, uint32(n))
	if pad {
		dst = append(dst, 0)
	}
	return append(dst, b...), nil
}

// AppendString appends b with a plain 4-byte length prefix. Used for the
// MAC input fields, where no sign padding applies.
func AppendString(dst, b []byte) []byte {
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(b)))
	return append(dst, b...)
}

// reader walks an SSH wire buffer.
type reader struct {
	buf []byte
}

func (r *reader) string() ([]byte, error) {
	if len(r.buf) < prefixSize {
		return nil, errors.Wrap(ErrMalformed, "truncated length prefix")
	}
	n := binary.BigEndian.Uint32(r.buf)
	r.buf = r.buf[prefixSize:]
	if uint64(n) > uint64(len(r.buf)) {
		return nil, errors.Wrapf(ErrMalformed, "field length %d exceeds remaining %d bytes", n, len(r.buf))
	}
	b := r.buf[:n]
	r.buf = r.buf[n:]
	return b, nil
}

// mpint reads one mpint and strips the sign padding byte.
func (r *reader) mpint() ([]byte, error) {
	b, err := r.string()
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, errors.Wrap(ErrMissingKeyComponent, "empty integer")
	}
	if len(b) > 1 && b[0] == 0 && b[1]&0x80 != 0 {
		b = b[1:]
	}
	return b, nil
}
