package usecase

import (
	"errors"
	"fmt"

	"github.com/iamvkosarev/ai-mail-assistant/internal/model"
	"github.com/iamvkosarev/ai-mail-assistant/pkg/local"
)

const (
	MessageChatSettingsMissing = "errorApiSettingsMissing"
	MessageSttSettingsMissing  = "errorSttSettingsMissing"
	MessageNoMessageOpen       = "noMessageContextMsg"
	MessageNoComposeWindow     = "noComposeWindowMsg"
	MessageMicrophoneAccess    = "errorMicrophoneAccess"
	MessageEmptyRecording      = "errorEmptyRecording"
	MessageEmptyTranscript     = "errorEmptyTranscript"
	MessageNoActiveRecording   = "errorNoActiveRecording"
	MessageRecordingActive     = "errorRecordingActive"
	MessageActionInProgress    = "errorActionInProgress"
	MessageNoInstructions      = "noInstructionsProvided"
	MessageSystemPromptMissing = "errorSystemPromptNotFound"
	MessageSystemPromptName    = "errorSystemPromptName"
	MessageAPIGeneral          = "errorApiGeneral"
	MessageSttAPI              = "errorSttApi"
	MessageImportError         = "importErrorMsg"
	MessageGeneralError        = "generalError"
	MessageExportNote          = "exportNote"

	MessageSystemPromptDefault = "systemPromptDefault"
	MessageAutoresponsePrompt  = "autoresponsePrompt"
	MessagePromptTemplate      = "promptTemplateDefault"
	MessagePromptSender        = "promptContextSender"
	MessagePromptThread        = "promptContextThread"
	MessagePromptThreadEntry   = "promptContextThreadEntry"
	MessagePromptLanguage      = "promptContextLanguageDetect"
	MessageTestSystemPrompt    = "testApiSystemPrompt"
	MessageTestUserPrompt      = "testApiUserPrompt"

	MessageToneFormal   = "toneFormal"
	MessageToneNeutral  = "toneNeutral"
	MessageToneFriendly = "toneFriendly"
	MessageToneCasual   = "toneCasual"
	MessageLengthShort  = "lengthShort"
	MessageLengthMedium = "lengthMedium"
	MessageLengthLong   = "lengthLong"

	MessageStatsModel       = "statsModel"
	MessageStatsTokens      = "statsTokens"
	MessageStatsTime        = "statsTime"
	MessageStatsCost        = "statsCost"
	MessageStatsGenerated   = "statsGenerated"
	MessageStatsNone        = "statsNone"
	MessageReplyInserted    = "replyInserted"
	MessageReplyStarted     = "replyStarted"
	MessageApiTestSuccess   = "apiTestSuccess"
	MessageSettingsImported = "settingsImported"
	MessageSettingsExported = "settingsExported"
	MessageRecordingStarted = "recordingStarted"
)

const defaultPromptTemplateEng = `Email context:
Subject: {subject}
{senderLine}Receiver: {receiver}
Receiver name: {receiverName}
Receiver organization: {receiverOrganization}
Message: {body}
{thread}{languageDetect}

Instructions: {instructions}

Write only the body of the reply email, without a subject line.`

const defaultPromptTemplateGer = `E-Mail-Kontext:
Betreff: {subject}
{senderLine}Empfänger: {receiver}
Name des Empfängers: {receiverName}
Organisation des Empfängers: {receiverOrganization}
Nachricht: {body}
{thread}{languageDetect}

Anweisungen: {instructions}

Schreibe nur den Text der Antwort-E-Mail, ohne Betreffzeile.`

var catalog = map[string]local.TextSet{
	MessageChatSettingsMissing: local.NewSet(
		"Please save API URL, API key and model in the settings first.",
		local.NewTrans(local.Ger, "Bitte zuerst API-URL, API-Schlüssel und Modell in den Einstellungen speichern."),
	),
	MessageSttSettingsMissing: local.NewSet(
		"Please save the speech-to-text API settings first.",
		local.NewTrans(local.Ger, "Bitte zuerst die Einstellungen der Spracherkennungs-API speichern."),
	),
	MessageNoMessageOpen: local.NewSet(
		"No message or reply draft open. Please open an email first.",
		local.NewTrans(local.Ger, "Keine Nachricht oder Antwort geöffnet. Bitte zuerst eine E-Mail öffnen."),
	),
	MessageNoComposeWindow: local.NewSet(
		"No compose window open.",
		local.NewTrans(local.Ger, "Kein Verfassen-Fenster geöffnet."),
	),
	MessageMicrophoneAccess: local.NewSet(
		"Microphone access denied.",
		local.NewTrans(local.Ger, "Zugriff auf das Mikrofon verweigert."),
	),
	MessageEmptyRecording: local.NewSet(
		"The recording is empty.",
		local.NewTrans(local.Ger, "Die Aufnahme ist leer."),
	),
	MessageEmptyTranscript: local.NewSet(
		"No speech was recognized.",
		local.NewTrans(local.Ger, "Es wurde keine Sprache erkannt."),
	),
	MessageNoActiveRecording: local.NewSet(
		"No active recording.",
		local.NewTrans(local.Ger, "Keine aktive Aufnahme."),
	),
	MessageRecordingActive: local.NewSet(
		"A recording is already running.",
		local.NewTrans(local.Ger, "Es läuft bereits eine Aufnahme."),
	),
	MessageActionInProgress: local.NewSet(
		"Please wait, another request is still running.",
		local.NewTrans(local.Ger, "Bitte warten, eine andere Anfrage läuft noch."),
	),
	MessageNoInstructions: local.NewSet(
		"Please provide instructions for the AI.",
		local.NewTrans(local.Ger, "Bitte Anweisungen für die KI eingeben."),
	),
	MessageSystemPromptMissing: local.NewSet(
		"System prompt not found.",
		local.NewTrans(local.Ger, "System-Prompt nicht gefunden."),
	),
	MessageSystemPromptName: local.NewSet(
		"Please enter a name for the system prompt.",
		local.NewTrans(local.Ger, "Bitte einen Namen für den System-Prompt eingeben."),
	),
	MessageAPIGeneral: local.NewSet(
		"API error",
		local.NewTrans(local.Ger, "API-Fehler"),
	),
	MessageSttAPI: local.NewSet(
		"Speech recognition error",
		local.NewTrans(local.Ger, "Fehler bei der Spracherkennung"),
	),
	MessageImportError: local.NewSet(
		"Import failed: ",
		local.NewTrans(local.Ger, "Import fehlgeschlagen: "),
	),
	MessageGeneralError: local.NewSet(
		"Error: ",
		local.NewTrans(local.Ger, "Fehler: "),
	),
	MessageExportNote: local.NewSet(
		"This file contains sensitive API keys. Keep it safe!",
		local.NewTrans(local.Ger, "Diese Datei enthält vertrauliche API-Schlüssel. Bitte sicher aufbewahren!"),
	),
	MessageSystemPromptDefault: local.NewSet(
		"You are a helpful assistant that writes professional email replies.",
		local.NewTrans(local.Ger, "Du bist ein hilfreicher Assistent, der professionelle E-Mail-Antworten schreibt."),
	),
	MessageAutoresponsePrompt: local.NewSet(
		"Write a suitable and polite reply to this email.",
		local.NewTrans(local.Ger, "Schreibe eine passende und höfliche Antwort auf diese E-Mail."),
	),
	MessagePromptTemplate: local.NewSet(
		defaultPromptTemplateEng,
		local.NewTrans(local.Ger, defaultPromptTemplateGer),
	),
	MessagePromptSender: local.NewSet(
		"Sender: %s\n",
		local.NewTrans(local.Ger, "Absender: %s\n"),
	),
	MessagePromptThread: local.NewSet(
		"Earlier messages in this conversation:\n",
		local.NewTrans(local.Ger, "Frühere Nachrichten in dieser Unterhaltung:\n"),
	),
	MessagePromptThreadEntry: local.NewSet(
		"--- %s (%s): %s\n%s\n",
		local.NewTrans(local.Ger, "--- %s (%s): %s\n%s\n"),
	),
	MessagePromptLanguage: local.NewSet(
		"Reply in the same language as the message above.",
		local.NewTrans(local.Ger, "Antworte in derselben Sprache wie die obige Nachricht."),
	),
	MessageTestSystemPrompt: local.NewSet(
		"You are a test assistant.",
		local.NewTrans(local.Ger, "Du bist ein Test-Assistent."),
	),
	MessageTestUserPrompt: local.NewSet(
		"Reply with a short confirmation.",
		local.NewTrans(local.Ger, "Antworte mit einer kurzen Bestätigung."),
	),
	MessageToneFormal: local.NewSet(
		"Use a formal tone.",
		local.NewTrans(local.Ger, "Verwende einen förmlichen Ton."),
	),
	MessageToneNeutral: local.NewSet(
		"Use a neutral tone.",
		local.NewTrans(local.Ger, "Verwende einen neutralen Ton."),
	),
	MessageToneFriendly: local.NewSet(
		"Use a friendly tone.",
		local.NewTrans(local.Ger, "Verwende einen freundlichen Ton."),
	),
	MessageToneCasual: local.NewSet(
		"Use a casual tone.",
		local.NewTrans(local.Ger, "Verwende einen lockeren Ton."),
	),
	MessageLengthShort: local.NewSet(
		"Keep the reply short, a few sentences at most.",
		local.NewTrans(local.Ger, "Halte die Antwort kurz, höchstens ein paar Sätze."),
	),
	MessageLengthMedium: local.NewSet(
		"Keep the reply of medium length.",
		local.NewTrans(local.Ger, "Die Antwort soll eine mittlere Länge haben."),
	),
	MessageLengthLong: local.NewSet(
		"Write a detailed reply.",
		local.NewTrans(local.Ger, "Schreibe eine ausführliche Antwort."),
	),
	MessageStatsModel: local.NewSet(
		"Model: %s",
		local.NewTrans(local.Ger, "Modell: %s"),
	),
	MessageStatsTokens: local.NewSet(
		"Tokens: %d in / %d out",
		local.NewTrans(local.Ger, "Tokens: %d Eingabe / %d Ausgabe"),
	),
	MessageStatsTime: local.NewSet(
		"Time: %.2fs",
		local.NewTrans(local.Ger, "Zeit: %.2fs"),
	),
	MessageStatsCost: local.NewSet(
		"Cost: %s",
		local.NewTrans(local.Ger, "Kosten: %s"),
	),
	MessageStatsGenerated: local.NewSet(
		"Generated emails: %d",
		local.NewTrans(local.Ger, "Generierte E-Mails: %d"),
	),
	MessageStatsNone: local.NewSet(
		"No reply generated yet.",
		local.NewTrans(local.Ger, "Noch keine Antwort generiert."),
	),
	MessageReplyInserted: local.NewSet(
		"Reply inserted into draft %s",
		local.NewTrans(local.Ger, "Antwort in Entwurf %s eingefügt"),
	),
	MessageReplyStarted: local.NewSet(
		"New reply draft started: %s",
		local.NewTrans(local.Ger, "Neuer Antwortentwurf erstellt: %s"),
	),
	MessageApiTestSuccess: local.NewSet(
		"API test successful: %s",
		local.NewTrans(local.Ger, "API-Test erfolgreich: %s"),
	),
	MessageSettingsImported: local.NewSet(
		"Settings imported.",
		local.NewTrans(local.Ger, "Einstellungen importiert."),
	),
	MessageSettingsExported: local.NewSet(
		"Settings exported to %s",
		local.NewTrans(local.Ger, "Einstellungen exportiert nach %s"),
	),
	MessageRecordingStarted: local.NewSet(
		"Recording... press Ctrl+C to stop.",
		local.NewTrans(local.Ger, "Aufnahme läuft... Strg+C zum Beenden."),
	),
}

// NewTranslator builds the translator for a uiLanguage setting value.
func NewTranslator(uiLanguage string) *local.Translator {
	return local.NewTranslator(local.ParseLanguage(uiLanguage), catalog)
}

// UserMessage renders err the way it is shown to the user.
func UserMessage(err error, tr *local.Translator) string {
	if err == nil {
		return ""
	}
	var apiErr *model.APIError
	var formatErr *model.FormatError
	switch {
	case errors.Is(err, model.ErrChatSettingsMissing):
		return tr.T(MessageChatSettingsMissing)
	case errors.Is(err, model.ErrSttSettingsMissing):
		return tr.T(MessageSttSettingsMissing)
	case errors.Is(err, model.ErrNoMessageOpen), errors.Is(err, model.ErrNoMessageDisplayed):
		return tr.T(MessageNoMessageOpen)
	case errors.Is(err, model.ErrNoComposeWindow):
		return tr.T(MessageNoComposeWindow)
	case errors.Is(err, model.ErrMicrophoneAccess):
		return tr.T(MessageMicrophoneAccess)
	case errors.Is(err, model.ErrEmptyRecording):
		return tr.T(MessageEmptyRecording)
	case errors.Is(err, model.ErrEmptyTranscript):
		return tr.T(MessageEmptyTranscript)
	case errors.Is(err, model.ErrNoActiveRecording):
		return tr.T(MessageNoActiveRecording)
	case errors.Is(err, model.ErrRecordingActive):
		return tr.T(MessageRecordingActive)
	case errors.Is(err, model.ErrActionInProgress):
		return tr.T(MessageActionInProgress)
	case errors.Is(err, model.ErrNoInstructions):
		return tr.T(MessageNoInstructions)
	case errors.Is(err, model.ErrSystemPromptNotFound):
		return tr.T(MessageSystemPromptMissing)
	case errors.Is(err, model.ErrEmptySystemPromptName):
		return tr.T(MessageSystemPromptName)
	case errors.As(err, &apiErr):
		key := MessageAPIGeneral
		if apiErr.Service == model.ServiceSTT {
			key = MessageSttAPI
		}
		return fmt.Sprintf("%s (%d): %s", tr.T(key), apiErr.StatusCode, apiErr.Body)
	case errors.As(err, &formatErr):
		return tr.T(MessageImportError) + formatErr.Error()
	default:
		return tr.T(MessageGeneralError) + err.Error()
	}
}
