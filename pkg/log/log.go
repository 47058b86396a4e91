package log

import (
	"bufio"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"
	"time"
)

// Verbose is set by the CLI flag to enable debug logging
var Verbose bool

// LogWriter can be overwritten by tests to suppress log output
var LogWriter io.Writer = os.Stdout

var infoLogger, warningLogger, errorLogger, debugLogger *logger

const (
	boldColor    = "\033[1m%s\033[0m"
	infoColor    = "\033[0;34m%s\033[0m"
	noticeColor  = "\033[0;36m%s\033[0m"
	warningColor = "\033[0;33m%s\033[0m"
	errorColor   = "\033[0;31m%s\033[0m"
	debugColor   = "\033[0;36m%s\033[0m"
	tailColor    = "\033[0;35m%s\033[0m"
)

// dividerWidth is the number of dashes printed between images in a batch.
const dividerWidth = 50

func init() {
	infoLogger = &logger{"INFO", infoColor}
	warningLogger = &logger{"WARNING", warningColor}
	errorLogger = &logger{"ERROR", errorColor}
	debugLogger = &logger{"DEBUG", debugColor}
}

type logger struct {
	prefix, color string
}

func (l *logger) getPrefix() string {
	return fmt.Sprintf(l.color, fmt.Sprintf("[%s]", l.prefix))
}

const timeFormat = "2006/01/02 15:04:05"

func (l *logger) getTime() string {
	return fmt.Sprintf(noticeColor, time.Now().Local().Format(timeFormat))
}

func (l *logger) seedLine() {
	fmt.Fprint(LogWriter, l.getTime(), "  ", l.getPrefix(), "\t")
}

func (l *logger) Println(args ...interface{}) {
	l.seedLine()
	line := fmt.Sprintln(args...)
	fmt.Fprintf(LogWriter, boldColor, line)
}

func (l *logger) Printf(fstr string, args ...interface{}) {
	l.seedLine()
	line := fmt.Sprintf(fstr, args...)
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	fmt.Fprintf(LogWriter, boldColor, line)
}

// Divider writes a plain separator line. It is used to visually split the
// log output of consecutive images in a batch.
func Divider() {
	fmt.Fprintln(LogWriter, strings.Repeat("-", dividerWidth))
}

// TailReader will follow the given reader and send its contents to a
// dedicated logger configured with the given prefix. It returns when the
// reader is exhausted.
func TailReader(prefix string, rdr io.Reader) {
	l := &logger{prefix, tailColor}
	scanner := bufio.NewScanner(rdr)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		l.Println(text)
	}
	// keep writers on the other end of a pipe from blocking after an overlong line
	io.Copy(ioutil.Discard, rdr)
}

// TailWriter returns a writer whose lines are sent to a logger with the given
// prefix. Close must be called to flush the final line.
func TailWriter(prefix string) io.WriteCloser {
	pr, pw := io.Pipe()
	tw := &tailWriter{PipeWriter: pw, done: make(chan struct{})}
	go func() {
		defer close(tw.done)
		TailReader(prefix, pr)
	}()
	return tw
}

type tailWriter struct {
	*io.PipeWriter
	done chan struct{}
}

func (t *tailWriter) Close() error {
	err := t.PipeWriter.Close()
	<-t.done
	return err
}

// Info is the equivalent of a log.Println on the info logger.
func Info(args ...interface{}) {
	infoLogger.Println(args...)
}

// Infof is the equivalent of a log.Printf on the info logger.
func Infof(fstr string, args ...interface{}) {
	infoLogger.Printf(fstr, args...)
}

// Warning is the equivalent of a log.Println on the warning logger.
func Warning(args ...interface{}) {
	warningLogger.Println(args...)
}

// Warningf is the equivalent of a log.Printf on the warning logger.
func Warningf(fstr string, args ...interface{}) {
	warningLogger.Printf(fstr, args...)
}

// Error is the equivalent of a log.Println on the error logger.
func Error(args ...interface{}) {
	errorLogger.Println(args...)
}

// Errorf is the equivalent of a log.Printf on the error logger.
func Errorf(fstr string, args ...interface{}) {
	errorLogger.Printf(fstr, args...)
}

// Debug is the equivalent of a log.Println on the debug logger.
func Debug(args ...interface{}) {
	if Verbose {
		debugLogger.Println(args...)
	}
}

// Debugf is the equivalent of a log.Printf on the debug logger.
func Debugf(fstr string, args ...interface{}) {
	if Verbose {
		debugLogger.Printf(fstr, args...)
	}
}
