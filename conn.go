package lrucached

import (
	"bufio"
	"fmt"
	"io"

	"github.com/facebookgo/stackerr"

	"github.com/skipor/lrucached/internal/util"
	"github.com/skipor/lrucached/log"
)

type conn struct {
	reader
	*bufio.Writer
	closer io.Closer
	*ConnMeta
	log log.Logger
}

func newConn(l log.Logger, m *ConnMeta, rwc io.ReadWriteCloser) *conn {
	return &conn{
		reader:   newReader(rwc),
		Writer:   bufio.NewWriterSize(rwc, OutBufferSize),
		closer:   rwc,
		ConnMeta: m,
		log:      l,
	}
}

func (c *conn) serve() {
	c.log.Debug("Serve connection.")
	defer func() {
		if r := recover(); r != nil {
			c.serverError(stackerr.Newf("Panic: %v", r))
			c.Close()
			panic(r)
		}
		c.Close()
		c.log.Debug("Connection closed.")
	}()

	err := c.loop()
	if err != nil {
		c.serverError(err)
	}
}

func (c *conn) Close() error {
	c.Flush()
	return c.closer.Close()
}

func (c *conn) loop() error {
	for {
		command, fields, clientErr, err := c.readCommand()
		if err != nil {
			if err == io.EOF {
				// Just client disconnect. Ok.
				return nil
			}
			return err
		}
		if clientErr == nil {
			c.log.Debugf("Command: %s.", command)
			switch string(command) { // No allocation.
			case GetCommand, GetsCommand:
				clientErr, err = c.get(fields)
			case SetCommand:
				clientErr, err = c.set(fields)
			case DeleteCommand:
				clientErr, err = c.delete(fields)
			case StatsCommand:
				clientErr, err = c.stats(fields)
			default:
				c.log.Errorf("Unexpected command: %s", command)
				err = c.sendResponse(ErrorResponse)
			}
		}
		if clientErr != nil && err == nil {
			err = c.sendClientError(clientErr)
		}
		if err != nil {
			return err
		}
	}
}

func (c *conn) get(fields [][]byte) (clientErr, err error) {
	var keys [][]byte
	keys, clientErr = parseGetFields(fields)
	if clientErr != nil {
		return
	}
	views := c.Cache.Get(keys...)
	err = c.sendGetResponse(views)
	return
}

func (c *conn) sendGetResponse(views []ItemView) error {
	c.log.Debugf("Sending %v found values.", len(views))
	for _, view := range views {
		c.WriteString(ValueResponse)
		c.WriteByte(' ')
		c.WriteString(view.Key)
		fmt.Fprintf(c, " %v %v"+Separator, view.Flags, len(view.Data))
		c.Write(view.Data)
		_, err := c.WriteString(Separator)
		if err != nil {
			return stackerr.Wrap(err)
		}
	}
	return c.sendResponse(EndResponse)
}

func (c *conn) set(fields [][]byte) (clientErr, err error) {
	var m setMeta
	var noreply bool
	m, noreply, clientErr = parseSetFields(fields)
	switch util.Unwrap(clientErr) {
	case nil:
	case ErrExpirationNotSupported, ErrTooLargeItem:
		err = c.discardDataBlock(m.Bytes)
		return
	default:
		err = c.discardCommand()
		return
	}
	if m.Bytes > c.MaxItemSize {
		clientErr = stackerr.Wrap(ErrTooLargeItem)
		err = c.discardDataBlock(m.Bytes)
		return
	}

	var i Item
	i.Flags = m.Flags
	i.Data, clientErr, err = c.readDataBlock(m.Bytes)
	if err != nil || clientErr != nil {
		return
	}

	c.Cache.Set(m.Key, i)

	if noreply {
		err = c.Flush()
		return
	}
	err = c.sendResponse(StoredResponse)
	return
}

func (c *conn) delete(fields [][]byte) (clientErr, err error) {
	var key []byte
	var noreply bool
	key, noreply, clientErr = parseDeleteFields(fields)
	if clientErr != nil {
		return
	}

	deleted := c.Cache.Delete(key)

	if noreply {
		err = c.Flush()
		return
	}
	var response string
	if deleted {
		response = DeletedResponse
	} else {
		response = NotFoundResponse
	}
	err = c.sendResponse(response)
	return
}

func (c *conn) stats(fields [][]byte) (clientErr, err error) {
	if len(fields) != 0 {
		clientErr = stackerr.Wrap(ErrUnexpectedCommandOptions)
		return
	}
	s := c.Cache.Stats()
	for _, stat := range []struct {
		name  string
		value interface{}
	}{
		{"capacity", s.Capacity},
		{"curr_items", s.Items},
		{"get_hits", s.Hits},
		{"get_misses", s.Misses},
		{"evictions", s.Evictions},
		{"cmd_set", s.Sets},
		{"delete_hits", s.Deletes},
	} {
		fmt.Fprintf(c, "%s %s %v"+Separator, StatResponse, stat.name, stat.value)
	}
	err = c.sendResponse(EndResponse)
	return
}

func (c *conn) serverError(err error) {
	c.log.Error("Server error: ", err)
	err = util.Unwrap(err)
	if err == io.ErrUnexpectedEOF {
		return
	}
	c.sendResponse(fmt.Sprintf("%s %s", ServerErrorResponse, err))
}

func (c *conn) sendClientError(err error) error {
	c.log.Warn("Client error: ", err)
	err = util.Unwrap(err)
	return c.sendResponse(fmt.Sprintf("%s %s", ClientErrorResponse, err))
}

func (c *conn) sendResponse(res string) error {
	c.WriteString(res)
	c.WriteString(Separator)
	return c.Flush()
}

func (c *conn) Flush() error {
	return stackerr.Wrap(c.Writer.Flush())
}
