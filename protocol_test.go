package lrucached

import (
	"bytes"
	"errors"
	"io"
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/mock"

	"github.com/skipor/lrucached/internal/util"
	. "github.com/skipor/lrucached/testutil"
)

type mockReader struct {
	mock.Mock
}

func (m *mockReader) Read(p []byte) (n int, err error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

var _ = Describe("reader", func() {
	var (
		input          *bytes.Buffer
		r              reader
		command        []byte
		fields         [][]byte
		clientErr, err error
	)
	ReadCommand := func() {
		command, fields, clientErr, err = r.readCommand()
	}

	const correctCommand = "get xxx   yyy " + Separator
	var expectedCommand = []byte("get")
	var expectedFields = [][]byte{[]byte("xxx"), []byte("yyy")}

	ExpectNoErrors := func() {
		ExpectWithOffset(1, clientErr).To(BeNil())
		ExpectWithOffset(1, err).To(BeNil())
	}
	ExpectCommandRead := func() {
		ReadCommand()
		ExpectNoErrors()
		Expect(command).To(Equal(expectedCommand))
		Expect(fields).To(Equal(expectedFields))
	}
	ExpectErr := func(expectedErr error) {
		ReadCommand()
		Expect(util.Unwrap(err)).To(Equal(expectedErr))
		Expect(command).To(BeNil())
		Expect(fields).To(BeNil())
	}

	BeforeEach(func() {
		input = &bytes.Buffer{}
		r = newReader(input)
	})
	ExpectEOF := func() {
		ReadCommand()
		Expect(util.Unwrap(err)).To(Equal(io.EOF))
		Expect(clientErr).To(BeNil())
		Expect(command).To(BeNil())
		Expect(fields).To(BeNil())
	}

	Context("read error", func() {
		var afterInputErr error
		JustBeforeEach(func() {
			afterInputErr = errors.New("some read error")
			mr := &mockReader{}
			mr.On("Read", mock.Anything).Return(0, afterInputErr)
			r = newReader(io.MultiReader(input, mr))
		})

		Context("just after some commands", func() {
			var n int
			BeforeEach(func() {
				n = Rand.Intn(3)
				for i := 0; i < n; i++ {
					input.WriteString(correctCommand)
				}
			})
			It("fails after them", func() {
				for i := 0; i < n; i++ {
					ExpectCommandRead()
				}
				ExpectErr(afterInputErr)
			})
		})

		Context("before command end", func() {
			BeforeEach(func() {
				input.WriteString("get xxx ")
			})
			It("fails", func() {
				ExpectErr(afterInputErr)
			})
		})

		Context("before large command end", func() {
			BeforeEach(func() {
				input.Write(ChunkWithoutSeparators(5 * MaxCommandSize))
			})
			It("fails", func() {
				ExpectErr(afterInputErr)
			})
		})
	})

	Context("empty input", func() {
		It("got EOF", func() {
			ExpectEOF()
		})
	})

	Context("unterminated last command", func() {
		BeforeEach(func() { input.WriteString("get xxx") })
		It("got unexpected EOF", func() {
			ReadCommand()
			Expect(util.Unwrap(err)).To(Equal(io.ErrUnexpectedEOF))
		})
	})

	Context("n correct commands", func() {
		var n int
		JustBeforeEach(func() {
			for i := 0; i < n; i++ {
				input.WriteString(correctCommand)
			}
		})
		AssertAllRead := func() {
			It("all of them read well", func() {
				for i := 0; i < n; i++ {
					ExpectCommandRead()
				}
				ExpectEOF()
			})
		}

		Context("n = 0 ", func() {
			BeforeEach(func() { n = 0 })
			AssertAllRead()
		})
		Context("n = some ", func() {
			BeforeEach(func() { n = Rand.Intn(50) + 1 })
			AssertAllRead()
		})
		Context("n = really big ", func() {
			BeforeEach(func() {
				n = Rand.Intn(2*MaxCommandSize/len(correctCommand)) + 1
			})
			AssertAllRead()
		})
	})

	Context("data block", func() {
		var data []byte
		var dbInput *bytes.Buffer
		BeforeEach(func() {
			dbInput = &bytes.Buffer{}
		})
		ReadDataBlock := func() {
			data, clientErr, err = r.readDataBlock(dbInput.Len())
		}
		ExpectDataBlockRead := func() {
			ReadDataBlock()
			ExpectNoErrors()
			ExpectBytesEqual(data, dbInput.Bytes())
		}

		Context("empty block", func() {
			BeforeEach(func() {
				input.WriteString(Separator)
			})
			It("read well", func() {
				ExpectDataBlockRead()
				ExpectEOF()
			})
		})

		Context("only correct data block", func() {
			BeforeEach(func() {
				dbInput.ReadFrom(io.LimitReader(FastRand, 2*InBufferSize))
				input.Write(dbInput.Bytes())
				input.WriteString(Separator)
			})
			It("read well", func() {
				ExpectDataBlockRead()
				ExpectEOF()
			})
		})

		Context("between commands", func() {
			BeforeEach(func() {
				input.WriteString(correctCommand)
				dbInput.ReadFrom(io.LimitReader(FastRand, 2*InBufferSize))
				input.Write(dbInput.Bytes())
				input.WriteString(Separator)
				input.WriteString(correctCommand)
			})
			It("all read well", func() {
				ExpectCommandRead()
				ExpectDataBlockRead()
				ExpectCommandRead()
				ExpectEOF()
			})
		})

		Context("longer than declared", func() {
			BeforeEach(func() {
				dbInput.WriteString("data")
				input.WriteString("data_tail" + Separator)
				input.WriteString(correctCommand)
			})
			It("tail skipped", func() {
				ReadDataBlock()
				Expect(util.Unwrap(clientErr)).To(Equal(ErrInvalidLineSeparator))
				Expect(err).To(BeNil())
				Expect(data).To(BeNil())
				ExpectCommandRead()
				ExpectEOF()
			})
		})

		Context("truncated", func() {
			BeforeEach(func() {
				dbInput.WriteString("data")
				input.WriteString("da")
			})
			It("fails", func() {
				ReadDataBlock()
				Expect(util.Unwrap(err)).To(Equal(io.ErrUnexpectedEOF))
				Expect(data).To(BeNil())
			})
		})

		Context("discard", func() {
			BeforeEach(func() {
				input.Write(ChunkWithoutSeparators(3 * InBufferSize))
				input.WriteString(Separator)
				input.WriteString(correctCommand)
			})
			It("next command read well", func() {
				Expect(r.discardDataBlock(3 * InBufferSize)).To(Succeed())
				ExpectCommandRead()
				ExpectEOF()
			})
		})
	})

	Context("client error in input ", func() {
		// Input is: correct command, input that produce error, correct command.
		BeforeEach(func() {
			input.WriteString(correctCommand)
		})
		JustBeforeEach(func() {
			input.WriteString(correctCommand)
		})

		AssertClientErrEqual := func(expectedClientErr error) {
			It("client error equal expected", func() {
				ExpectCommandRead()
				ReadCommand()
				if clientErr != nil {
					Byf("Got error: %v", clientErr)
				}
				Expect(util.Unwrap(clientErr)).To(Equal(expectedClientErr))
				Expect(err).To(BeNil())
				ExpectCommandRead()
				ExpectEOF()
			})
		}

		Context("illegal separator", func() {
			BeforeEach(func() {
				input.WriteString(strings.TrimSuffix(correctCommand, Separator))
				input.WriteByte('\n')
			})
			AssertClientErrEqual(ErrInvalidLineSeparator)
		})

		Context("empty command", func() {
			BeforeEach(func() {
				input.WriteString("   " + Separator)
			})
			AssertClientErrEqual(ErrEmptyCommand)
		})

		Context("too large command", func() {
			BeforeEach(func() {
				input.Write(ChunkWithoutSeparators(3*InBufferSize + Rand.Intn(InBufferSize)))
				input.WriteString(Separator)
			})
			AssertClientErrEqual(ErrTooLargeCommand)
		})
	})
})

func split(s string) [][]byte {
	return bytes.Fields([]byte(s))
}

var _ = Describe("parse", func() {
	Context("set", func() {
		It("correct", func() {
			m, noreply, err := parseSetFields(split("key 42 0 100"))
			Expect(err).To(BeNil())
			Expect(noreply).To(BeFalse())
			Expect(m).To(Equal(setMeta{Key: "key", Flags: 42, Bytes: 100}))
		})
		It("noreply", func() {
			_, noreply, err := parseSetFields(split("key 0 0 1 noreply"))
			Expect(err).To(BeNil())
			Expect(noreply).To(BeTrue())
		})
		It("expiration", func() {
			m, _, err := parseSetFields(split("key 0 100 5"))
			Expect(util.Unwrap(err)).To(Equal(ErrExpirationNotSupported))
			Expect(m.Bytes).To(Equal(5))
		})
		It("negative expiration", func() {
			m, _, err := parseSetFields(split("key 0 -1 5"))
			Expect(util.Unwrap(err)).To(Equal(ErrExpirationNotSupported))
			Expect(m.Bytes).To(Equal(5))
		})
		It("too large", func() {
			m, _, err := parseSetFields(split("key 0 0 1000000000"))
			Expect(util.Unwrap(err)).To(Equal(ErrTooLargeItem))
			Expect(m.Bytes).To(Equal(1000000000))
		})
		AssertSetErr := func(input string, expected error) {
			It(input, func() {
				_, _, err := parseSetFields(split(input))
				Expect(util.Unwrap(err)).To(Equal(expected))
			})
		}
		AssertSetErr("key 0 0", ErrMoreFieldsRequired)
		AssertSetErr("key 0 0 1 noreply extra", ErrTooManyFields)
		AssertSetErr("key 0 0 1 reply", ErrInvalidOption)
		AssertSetErr("key x 0 1", ErrFieldsParseError)
		AssertSetErr("key 0 0 -1", ErrFieldsParseError)
		AssertSetErr(strings.Repeat("k", MaxKeySize+1)+" 0 0 1", ErrTooLargeKey)
		AssertSetErr("k\x7fey 0 0 1", ErrInvalidCharInKey)
	})

	Context("get", func() {
		It("keys", func() {
			keys, err := parseGetFields(split("a b c"))
			Expect(err).To(BeNil())
			Expect(keys).To(Equal(split("a b c")))
		})
		It("no keys", func() {
			_, err := parseGetFields(nil)
			Expect(util.Unwrap(err)).To(Equal(ErrMoreFieldsRequired))
		})
		It("too large key", func() {
			_, err := parseGetFields(split("a " + strings.Repeat("k", MaxKeySize+1)))
			Expect(util.Unwrap(err)).To(Equal(ErrTooLargeKey))
		})
	})

	Context("delete", func() {
		It("correct", func() {
			key, noreply, err := parseDeleteFields(split("key noreply"))
			Expect(err).To(BeNil())
			Expect(noreply).To(BeTrue())
			Expect(key).To(Equal([]byte("key")))
		})
		It("time option", func() {
			_, _, err := parseDeleteFields(split("key 0"))
			Expect(util.Unwrap(err)).To(Equal(ErrInvalidOption))
		})
	})
})
