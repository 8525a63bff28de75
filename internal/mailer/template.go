package mailer

import (
	"fmt"
	"html/template"
	"strings"
)

// enquiryTemplate renders the branded HTML body. User-supplied values pass
// through html/template so markup in the submission cannot break the email.
var enquiryTemplate = template.Must(template.New("enquiry").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8" />
<title>New Enquiry - VM Financial Solutions</title>
</head>
<body style="margin:0;padding:0;background:#f4f6f8;font-family:system-ui,-apple-system,'Segoe UI',sans-serif;">
<table width="100%" cellpadding="0" cellspacing="0" style="padding:24px 0;">
  <tr>
    <td align="center">
      <table width="100%" cellpadding="0" cellspacing="0"
        style="max-width:650px;background:#ffffff;border-radius:16px;overflow:hidden;">
        <tr>
          <td style="background:#0a2540;padding:26px 32px;color:#ffffff;">
            <div style="font-size:24px;font-weight:700;">VM Financial Solutions</div>
            <div style="font-size:13px;margin-top:4px;color:#d1d5db;">Wealth &bull; Insurance &bull; Financial Planning</div>
          </td>
        </tr>
        <tr>
          <td style="background:#f9fafb;padding:14px 32px;border-bottom:1px solid #e5e7eb;color:#0a2540;font-size:14px;">
            <strong style="color:#c9a24d;">New website enquiry received</strong>
          </td>
        </tr>
        <tr>
          <td style="padding:28px 32px;">
            <table width="100%" cellpadding="0" cellspacing="0"
              style="background:#f9fafb;border-radius:14px;border:1px solid #e5e7eb;margin-bottom:20px;">
              <tr>
                <td style="padding:18px;border-bottom:1px solid #e5e7eb;">
                  <div style="font-size:11px;text-transform:uppercase;color:#6b7280;">Name</div>
                  <div style="font-size:17px;font-weight:600;color:#0a2540;">{{.Name}}</div>
                </td>
              </tr>
              <tr>
                <td style="padding:18px;border-bottom:1px solid #e5e7eb;">
                  <div style="font-size:11px;text-transform:uppercase;color:#6b7280;">Email</div>
                  <a href="mailto:{{.Email}}" style="font-size:16px;color:#0a2540;text-decoration:none;">{{.Email}}</a>
                </td>
              </tr>
              <tr>
                <td style="padding:18px;border-bottom:1px solid #e5e7eb;">
                  <div style="font-size:11px;text-transform:uppercase;color:#6b7280;">Phone</div>
                  <div style="font-size:16px;color:#0a2540;">{{.Phone}}</div>
                </td>
              </tr>
              <tr>
                <td style="padding:18px;">
                  <div style="font-size:11px;text-transform:uppercase;color:#6b7280;">Message</div>
                  <div style="font-size:15px;line-height:1.6;color:#0a2540;">{{.MessageHTML}}</div>
                </td>
              </tr>
            </table>
            <a href="mailto:{{.Email}}"
              style="display:inline-block;padding:12px 28px;border-radius:40px;background:#c9a24d;color:#0a2540;font-weight:700;text-decoration:none;font-size:15px;">
              Reply to {{.Name}}
            </a>
          </td>
        </tr>
        <tr>
          <td style="background:#f9fafb;padding:16px 32px;border-top:1px solid #e5e7eb;font-size:12px;color:#6b7280;">
            This enquiry was submitted via vmfinancialsolutions.com
          </td>
        </tr>
      </table>
    </td>
  </tr>
</table>
</body>
</html>
`))

type enquiryView struct {
	Name        string
	Email       string
	Phone       string
	MessageHTML template.HTML
}

func renderHTMLBody(enq Enquiry) (string, error) {
	phone := strings.TrimSpace(enq.Phone)
	if phone == "" {
		phone = "Not provided"
	}

	// escape first, then turn newlines into <br> so the result stays safe HTML
	escaped := template.HTMLEscapeString(enq.Message)
	body := strings.ReplaceAll(escaped, "\n", "<br>")

	var sb strings.Builder
	err := enquiryTemplate.Execute(&sb, enquiryView{
		Name:        enq.Name,
		Email:       enq.Email,
		Phone:       phone,
		MessageHTML: template.HTML(body),
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

func renderTextBody(enq Enquiry) string {
	phone := strings.TrimSpace(enq.Phone)
	if phone == "" {
		phone = "Not provided"
	}
	return fmt.Sprintf(`New enquiry from VMFinancialSolutions.com

Name:  %s
Email: %s
Phone: %s

Message:
%s`, enq.Name, enq.Email, phone, enq.Message)
}
