package instructions

// InsightPersona is the system prompt of the narrative insight request.
const InsightPersona = `Sən dəqiq və analitik neft və qaz emalı prosesləri üzrə məlumatlar haqqında Azərbaycan dilində təhlil təqdim edən köməkçisən.`

// InsightRequest wraps the data summary into the user prompt.
const InsightRequest = `Aşağıdakı məlumatları təhlil et və biznes üçün əhəmiyyətli nəticələri Azərbaycan dilində təqdim et: %s`

const InsightFallback = "OpenAI ilə təhlil yaradılarkən xəta baş verdi."

const WelcomeText = `🔍 *SOCAR Process Analyst Bot*-a xoş gəlmisiniz!

Bu bot SOCAR neft və qaz emalı prosesləri üzrə məlumatların təhlili və vizualizasiyası üçün yaradılmışdır.

✅ *Nə edə bilər?*
• Proses səmərəliliyini analiz etmək
• Enerji istifadəsini vizuallaşdırmaq
• Ətraf mühitə təsiri ölçmək
• Əməliyyat xərclərini təhlil etmək
• AI təhlili ilə əlavə insights təqdim etmək

Daha ətraflı məlumat üçün /help yazın.`

const HelpText = `SOCAR Process Analyst Bot - Kömək

Bu bot SOCAR neft və qaz emalı prosesləri üzrə məlumatların təhlili və vizualizasiyası üçün yaradılmışdır.

Mövcud əmrlər:
/start - Botu başlatmaq və əsas menyunu göstərmək
/help - Bu kömək mesajını göstərmək
/summary - Əsas məlumatların xülasəsini göstərmək
/menu - Əsas menyunu yenidən göstərmək

Panel düymələri vasitəsilə aşağıdakı təhlilləri əldə edə bilərsiniz:
- Əsas Məlumatlar: Proseslərin ümumi statistikası
- Səmərəlilik Analizi: Proses tipinə görə səmərəlilik göstəriciləri
- Enerji İstifadəsi: Enerji istifadəsi və emal həcmi arasında əlaqə
- Ətraf Mühit Təsiri: CO2 emissiyalarının təhlili
- Xərc Analizi: Əməliyyat xərclərinin təhlili
- OpenAI Təhlili: Süni intellekt tərəfindən yaradılmış təhlil`

// HelpContact is appended to HelpText when a support contact is configured.
const HelpContact = "\n\nƏlavə məlumat üçün: %s"

const MenuPrompt = "Lütfən, analiz növünü seçin:"

// Menu button labels. Incoming messages are matched against them exactly.
const (
	ButtonSummary       = "Əsas Məlumatlar"
	ButtonEfficiency    = "Səmərəlilik Analizi"
	ButtonEnergy        = "Enerji İstifadəsi"
	ButtonEnvironmental = "Ətraf Mühit Təsiri"
	ButtonCost          = "Xərc Analizi"
	ButtonInsight       = "OpenAI Təhlili"
)

// MenuButtons in keyboard order, two per row.
var MenuButtons = []string{
	ButtonSummary, ButtonEfficiency,
	ButtonEnergy, ButtonEnvironmental,
	ButtonCost, ButtonInsight,
}

// Progress notices sent before a report is prepared.
const (
	NoticeSummary       = "Əsas məlumatlar yüklənir..."
	NoticeEfficiency    = "Səmərəlilik analizi hazırlanır..."
	NoticeEnergy        = "Enerji istifadəsi analizi hazırlanır..."
	NoticeEnvironmental = "Ətraf mühit təsiri analizi hazırlanır..."
	NoticeCost          = "Xərc analizi hazırlanır..."
	NoticeInsight       = "OpenAI təhlili hazırlanır, xahiş edirik gözləyin..."
)

// Failure messages. The formats take the error text.
const (
	MsgDataLoadFailed   = "Məlumatların yüklənməsində xəta baş verdi."
	MsgProcessingFailed = "Məlumatların emalında xəta: %v"
	MsgChartFailed      = "Qrafik yaradılarkən xəta: %v"
	MsgInsightFailed    = "Təhlil yaradılarkən xəta: %v"
	MsgUnknownCommand   = "'%s' əmri tanınmadı. Kömək üçün /help yazın və ya panel düymələrindən istifadə edin."
)
