package lrucached

import (
	"bufio"
	"bytes"
	"io"
	"strconv"

	"github.com/facebookgo/stackerr"
	"github.com/pkg/errors"
)

const (
	MaxKeySize         = 250
	MaxItemSize        = 128 * (1 << 20) // 128 MB.
	DefaultMaxItemSize = 1 << 20
	MaxCommandSize     = 1 << 12

	Separator = "\r\n"

	SetCommand    = "set"
	GetCommand    = "get"
	GetsCommand   = "gets"
	DeleteCommand = "delete"
	StatsCommand  = "stats"

	NoReplyOption = "noreply"

	StoredResponse      = "STORED"
	ValueResponse       = "VALUE"
	StatResponse        = "STAT"
	EndResponse         = "END"
	DeletedResponse     = "DELETED"
	NotFoundResponse    = "NOT_FOUND"
	ErrorResponse       = "ERROR"
	ClientErrorResponse = "CLIENT_ERROR"
	ServerErrorResponse = "SERVER_ERROR"

	// Implementation specific consts.
	InBufferSize  = MaxCommandSize
	OutBufferSize = 16 * (1 << 10)
)

var (
	ErrTooLargeKey              = errors.New("too large key")
	ErrTooLargeItem             = errors.New("too large item")
	ErrInvalidOption            = errors.New("invalid option")
	ErrTooManyFields            = errors.New("too many fields")
	ErrMoreFieldsRequired       = errors.New("more fields required")
	ErrTooLargeCommand          = errors.New("command length is too big")
	ErrEmptyCommand             = errors.New("empty command")
	ErrFieldsParseError         = errors.New("fields parse error")
	ErrInvalidLineSeparator     = errors.New("invalid line separator")
	ErrInvalidCharInKey         = errors.New("key contains invalid characters")
	ErrExpirationNotSupported   = errors.New("expiration is not supported")
	ErrUnexpectedCommandOptions = errors.New("command has no options")

	separatorBytes = []byte(Separator)
)

func isInvalidFieldChar(b byte) bool {
	return b <= ' ' || b == 127
}

func checkKey(p []byte) error {
	if len(p) > MaxKeySize {
		return stackerr.Wrap(ErrTooLargeKey)
	}
	for _, b := range p {
		if isInvalidFieldChar(b) {
			return stackerr.Wrap(ErrInvalidCharInKey)
		}
	}
	return nil
}

func parseKey(p []byte) (key string, err error) {
	err = checkKey(p)
	if err != nil {
		return
	}
	key = string(p)
	return
}

type setMeta struct {
	Key     string
	Flags   uint32
	Exptime int64
	Bytes   int
}

// parseSetFields parses "<key> <flags> <exptime> <bytes> [noreply]".
// If error is ErrExpirationNotSupported or ErrTooLargeItem, meta.Bytes is valid,
// and data block can be skipped.
func parseSetFields(fields [][]byte) (m setMeta, noreply bool, err error) {
	const extraRequired = 3
	var key []byte
	var extra [][]byte
	key, extra, noreply, err = parseKeyFields(fields, extraRequired)
	if err != nil {
		return
	}
	m.Key, err = parseKey(key)
	if err != nil {
		return
	}
	var flags, size uint64
	flags, err = strconv.ParseUint(string(extra[0]), 10, 32)
	if err == nil {
		// Negative exptime means "expire immediately", so it is valid input.
		m.Exptime, err = strconv.ParseInt(string(extra[1]), 10, 64)
	}
	if err == nil {
		size, err = strconv.ParseUint(string(extra[2]), 10, 32)
	}
	if err != nil {
		err = stackerr.Wrap(errors.Wrap(ErrFieldsParseError, err.Error()))
		return
	}
	m.Flags = uint32(flags)
	m.Bytes = int(size)
	if m.Bytes > MaxItemSize {
		err = stackerr.Wrap(ErrTooLargeItem)
		return
	}
	if m.Exptime != 0 {
		err = stackerr.Wrap(ErrExpirationNotSupported)
	}
	return
}

func parseGetFields(fields [][]byte) (keys [][]byte, err error) {
	if len(fields) == 0 {
		err = stackerr.Wrap(ErrMoreFieldsRequired)
		return
	}
	for _, key := range fields {
		err = checkKey(key)
		if err != nil {
			return
		}
	}
	keys = fields
	return
}

func parseDeleteFields(fields [][]byte) (key []byte, noreply bool, err error) {
	key, _, noreply, err = parseKeyFields(fields, 0)
	if err != nil {
		return
	}
	err = checkKey(key)
	return
}

func parseKeyFields(fields [][]byte, extraRequired int) (key []byte, extra [][]byte, noreply bool, err error) {
	if len(fields) < 1+extraRequired {
		err = stackerr.Wrap(ErrMoreFieldsRequired)
		return
	}
	key = fields[0]
	extra = fields[1:][:extraRequired]
	options := fields[1:][extraRequired:]
	const maxOptions = 1
	if len(options) > maxOptions {
		err = stackerr.Wrap(ErrTooManyFields)
		return
	}
	if len(options) != 0 {
		if string(options[0]) != NoReplyOption {
			err = stackerr.Wrap(ErrInvalidOption)
			return
		}
		noreply = true
	}
	return
}

type reader struct {
	*bufio.Reader
}

func newReader(r io.Reader) reader {
	return reader{bufio.NewReaderSize(r, InBufferSize)}
}

// WARN: retuned byte slices points into read buffer and invalidated after next read.
func (r reader) readCommand() (command []byte, fields [][]byte, clientErr, err error) {
	var lineWithSeparator []byte
	// We accept only "\r\n" separator, so can't use ReadLine here.
	lineWithSeparator, err = r.ReadSlice('\n')
	if err == bufio.ErrBufferFull {
		clientErr = stackerr.Wrap(ErrTooLargeCommand)
		err = r.discardCommand()
		return
	}
	if err == io.EOF {
		if len(lineWithSeparator) != 0 {
			err = stackerr.Wrap(io.ErrUnexpectedEOF)
		}
		return
	}
	if err != nil {
		err = stackerr.Wrap(err)
		return
	}
	if !bytes.HasSuffix(lineWithSeparator, separatorBytes) {
		clientErr = stackerr.Wrap(ErrInvalidLineSeparator)
		return
	}
	line := bytes.TrimSuffix(lineWithSeparator, separatorBytes)
	split := bytes.Fields(line)
	if len(split) == 0 {
		clientErr = stackerr.Wrap(ErrEmptyCommand)
		return
	}
	command = split[0]
	fields = split[1:]
	return
}

// readDataBlock reads size bytes of data and separator after them.
// Returned slice is owned by caller.
func (r reader) readDataBlock(size int) (data []byte, clientErr, err error) {
	data = make([]byte, size)
	_, err = io.ReadFull(r, data)
	if err != nil {
		err = stackerr.Wrap(err)
		data = nil
		return
	}
	sep := make([]byte, len(separatorBytes))
	_, err = io.ReadFull(r, sep)
	if err != nil {
		err = stackerr.Wrap(err)
		data = nil
		return
	}
	if !bytes.Equal(sep, separatorBytes) {
		clientErr = stackerr.Wrap(ErrInvalidLineSeparator)
		data = nil
		if sep[len(sep)-1] != '\n' {
			// Data block is longer than declared. Skip its tail.
			err = r.discardCommand()
		}
	}
	return
}

// discardDataBlock skips data block of known size and its separator.
func (r reader) discardDataBlock(size int) error {
	_, err := r.Discard(size + len(separatorBytes))
	return stackerr.Wrap(err)
}

// discardCommand discards all input until next line separator.
func (r reader) discardCommand() error {
	for {
		_, err := r.ReadSlice('\n')
		if err == bufio.ErrBufferFull {
			continue
		}
		return stackerr.Wrap(err)
	}
}
