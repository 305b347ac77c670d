package logger_test

import (
	"bytes"
	"encoding/json"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/relloyd/aorist/logger"
)

var _ = Describe("Logger", func() {
	var (
		logOutput *bytes.Buffer
		log       *logger.LoggerImpl
	)

	BeforeEach(func() {
		logOutput = bytes.NewBufferString("")
		log = logger.NewLogger("test-service", "debug", false, logger.WithJSONFormat(), logger.WithOutput(logOutput))
	})

	decode := func() map[string]interface{} {
		var actual map[string]interface{}
		Expect(json.Unmarshal(logOutput.Bytes(), &actual)).To(Succeed())
		return actual
	}

	It("Should have `test-service` as service name", func() {
		log.Info("Testing")
		Expect(decode()["service"]).To(Equal("test-service"))
	})

	It("Should have info as log level", func() {
		log.Info("Testing")
		Expect(decode()["level"]).To(Equal("info"))
	})

	It("Should have warning as log level", func() {
		log.Warn("Testing")
		Expect(decode()["level"]).To(Equal("warning"))
	})

	It("Should not dump a stack on error unless asked", func() {
		log.Error("Testing")
		actual := decode()
		Expect(actual["level"]).To(Equal("error"))
		Expect(actual["stackTrace"]).To(BeNil())
	})

	It("Should dump a stack on error when PrintStackDump is set", func() {
		log.PrintStackDump = true
		log.Error("Testing")
		Expect(decode()["stackTrace"]).ToNot(BeNil())
	})

	It("Should carry fields into child loggers", func() {
		log.WithField("task", "download").Info("Testing")
		actual := decode()
		Expect(actual["task"]).To(Equal("download"))
		Expect(actual["msg"]).To(Equal("Testing"))
	})

	It("Should suppress debug output above debug level", func() {
		quiet := logger.NewLogger("test-service", "warn", false, logger.WithOutput(logOutput))
		quiet.Debug("hidden")
		Expect(logOutput.Len()).To(BeZero())
	})

	It("Should reject an unknown level", func() {
		_, err := logger.NewLoggerE("test-service", "chatty", false)
		Expect(err).To(HaveOccurred())
	})
})
