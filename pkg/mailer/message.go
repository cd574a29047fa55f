package mailer

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"strings"
	"time"
)

// buildMessage renders e as an RFC 5322 message. Bodies are quoted-printable;
// HTML plus Text becomes multipart/alternative with the text part first.
func buildMessage(e *Email, now time.Time, domain string) ([]byte, error) {
	var buf bytes.Buffer

	writeHeader(&buf, "From", e.From)
	writeHeader(&buf, "To", strings.Join(e.To, ", "))
	writeHeader(&buf, "Subject", mime.QEncoding.Encode("utf-8", e.Subject))
	writeHeader(&buf, "Date", now.Format(time.RFC1123Z))
	writeHeader(&buf, "Message-ID", messageID(now, domain))
	writeHeader(&buf, "MIME-Version", "1.0")

	if e.HTML != "" && e.Text != "" {
		mw := multipart.NewWriter(&buf)
		writeHeader(&buf, "Content-Type", "multipart/alternative; boundary="+mw.Boundary())
		buf.WriteString("\r\n")

		if err := writePart(mw, "text/plain", e.Text); err != nil {
			return nil, err
		}
		if err := writePart(mw, "text/html", e.HTML); err != nil {
			return nil, err
		}
		if err := mw.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	contentType, body := "text/plain", e.Text
	if e.HTML != "" {
		contentType, body = "text/html", e.HTML
	}
	writeHeader(&buf, "Content-Type", contentType+`; charset="UTF-8"`)
	writeHeader(&buf, "Content-Transfer-Encoding", "quoted-printable")
	buf.WriteString("\r\n")
	if err := writeQP(&buf, body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeHeader(buf *bytes.Buffer, key, value string) {
	// header values never carry raw line breaks
	value = strings.NewReplacer("\r", "", "\n", "").Replace(value)
	buf.WriteString(key + ": " + value + "\r\n")
}

func writePart(mw *multipart.Writer, contentType, body string) error {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", contentType+`; charset="UTF-8"`)
	h.Set("Content-Transfer-Encoding", "quoted-printable")
	w, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	qp := quotedprintable.NewWriter(w)
	if _, err := qp.Write([]byte(body)); err != nil {
		return err
	}
	return qp.Close()
}

func writeQP(buf *bytes.Buffer, body string) error {
	qp := quotedprintable.NewWriter(buf)
	if _, err := qp.Write([]byte(body)); err != nil {
		return err
	}
	return qp.Close()
}

func messageID(now time.Time, domain string) string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	if domain == "" {
		domain = "localhost"
	}
	return fmt.Sprintf("<%d.%s@%s>", now.UnixNano(), hex.EncodeToString(b), domain)
}
