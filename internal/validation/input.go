package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Константы валидации
const (
	MinUsernameLength          = 3
	MaxUsernameLength          = 30
	MinDisplayNameLength       = 2
	MaxDisplayNameLength       = 100
	MinBountyTitleLength       = 3
	MaxBountyTitleLength       = 200
	MinBountyDescriptionLength = 10
	MaxBountyDescriptionLength = 5000
	MaxRequestMessageLength    = 2000
	MaxSubmissionCommentLength = 2000
	MaxProofURLsCount          = 10
	MaxFeedbackLength          = 2000
	MaxDisputeReasonLength     = 2000
	MaxBioLength               = 1000
	MaxLocationLength          = 100
	MaxSkillLength             = 50
	MaxSkillsCount             = 50
	MinMessageLength           = 1
	MaxMessageLength           = 5000
	MaxProofURLLength          = 500
	MinRatingScore             = 1
	MaxRatingScore             = 5
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.TrimSpace(email)
	email = strings.ToLower(email)

	if !strings.Contains(email, "@") {
		return fmt.Errorf("email должен содержать символ @")
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart := parts[0]
	domainPart := parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}

	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}

	if !strings.Contains(domainPart, ".") {
		return fmt.Errorf("доменная часть email должна содержать точку")
	}

	emailRegex := regexp.MustCompile(`^[a-z0-9._+-]+$`)
	if !emailRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}

	domainRegex := regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	if !domainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateUsername проверяет имя пользователя.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("имя пользователя обязательно")
	}

	username = strings.TrimSpace(username)

	if err := ValidateLength("имя пользователя", username, MinUsernameLength, MaxUsernameLength); err != nil {
		return err
	}

	usernameRegex := regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("имя пользователя может содержать только буквы, цифры и подчеркивание")
	}

	if len(username) > 0 && unicode.IsDigit(rune(username[0])) {
		return fmt.Errorf("имя пользователя не может начинаться с цифры")
	}

	return nil
}

// ValidateDisplayName проверяет отображаемое имя.
func ValidateDisplayName(displayName string) error {
	if displayName == "" {
		return fmt.Errorf("отображаемое имя обязательно")
	}

	displayName = strings.TrimSpace(displayName)

	if err := ValidateLength("отображаемое имя", displayName, MinDisplayNameLength, MaxDisplayNameLength); err != nil {
		return err
	}

	displayNameRegex := regexp.MustCompile(`^[a-zA-Zа-яА-ЯёЁ0-9\s\-_.,!?()]+$`)
	if !displayNameRegex.MatchString(displayName) {
		return fmt.Errorf("отображаемое имя содержит недопустимые символы")
	}

	return nil
}

// ValidateBountyTitle проверяет заголовок баунти.
func ValidateBountyTitle(title string) error {
	if title == "" {
		return fmt.Errorf("заголовок баунти обязателен")
	}

	title = strings.TrimSpace(title)

	return ValidateLength("заголовок баунти", title, MinBountyTitleLength, MaxBountyTitleLength)
}

// ValidateBountyDescription проверяет описание баунти.
func ValidateBountyDescription(description string) error {
	if description == "" {
		return fmt.Errorf("описание баунти обязательно")
	}

	description = strings.TrimSpace(description)

	return ValidateLength("описание баунти", description, MinBountyDescriptionLength, MaxBountyDescriptionLength)
}

// ValidateRequestMessage проверяет сопроводительное сообщение отклика.
func ValidateRequestMessage(message string) error {
	if message == "" {
		return nil
	}
	return ValidateLength("сообщение отклика", strings.TrimSpace(message), 0, MaxRequestMessageLength)
}

// ValidateSkills проверяет массив навыков.
func ValidateSkills(skills []string) error {
	if len(skills) > MaxSkillsCount {
		return fmt.Errorf("количество навыков не может превышать %d", MaxSkillsCount)
	}

	seen := make(map[string]bool)
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			return fmt.Errorf("навык не может быть пустым")
		}

		if utf8.RuneCountInString(skill) > MaxSkillLength {
			return fmt.Errorf("навык не может быть длиннее %d символов", MaxSkillLength)
		}

		skillLower := strings.ToLower(skill)
		if seen[skillLower] {
			return fmt.Errorf("навык '%s' указан дважды", skill)
		}
		seen[skillLower] = true
	}

	return nil
}

// ValidateLocation проверяет местоположение.
func ValidateLocation(location *string) error {
	if location != nil && *location != "" {
		loc := strings.TrimSpace(*location)
		if err := ValidateLength("местоположение", loc, 0, MaxLocationLength); err != nil {
			return err
		}
	}
	return nil
}

// ValidateBio проверяет биографию.
func ValidateBio(bio *string) error {
	if bio != nil && *bio != "" {
		bioStr := strings.TrimSpace(*bio)
		if err := ValidateLength("биография", bioStr, 0, MaxBioLength); err != nil {
			return err
		}
	}
	return nil
}

// ValidateProofURLs проверяет ссылки на доказательства выполнения.
func ValidateProofURLs(urls []string) error {
	if len(urls) > MaxProofURLsCount {
		return fmt.Errorf("количество ссылок не может превышать %d", MaxProofURLsCount)
	}
	for _, raw := range urls {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return fmt.Errorf("ссылка на доказательство не может быть пустой")
		}
		if err := ValidateLength("ссылка", raw, 0, MaxProofURLLength); err != nil {
			return err
		}

		parsedURL, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("некорректный формат URL")
		}
		if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			return fmt.Errorf("ссылка должна начинаться с http:// или https://")
		}
		if parsedURL.Host == "" {
			return fmt.Errorf("ссылка должна содержать доменное имя")
		}
	}
	return nil
}

// ValidateRatingScore проверяет оценку.
func ValidateRatingScore(score int) error {
	if score < MinRatingScore || score > MaxRatingScore {
		return fmt.Errorf("оценка должна быть от %d до %d", MinRatingScore, MaxRatingScore)
	}
	return nil
}

// ValidateMessageContent проверяет содержимое сообщения.
func ValidateMessageContent(content string) error {
	if content == "" {
		return fmt.Errorf("сообщение не может быть пустым")
	}

	content = strings.TrimSpace(content)

	return ValidateLength("сообщение", content, MinMessageLength, MaxMessageLength)
}
