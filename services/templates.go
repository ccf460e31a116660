package services

// notificationTemplates is the static template catalog. Conditional blocks
// take a single variable name: the block stays when the variable is present,
// non-empty and not "false".
var notificationTemplates = []NotificationTemplate{
	{
		ID:      "ticket_confirmation",
		Name:    "Ticket Purchase Confirmation",
		Subject: "🎫 IEEE UJ Raffle Ticket Confirmation - {{ticketNumber}}",
		Content: `<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background: #00629B; color: #ffffff; padding: 24px; text-align: center;">
    <h1 style="margin: 0;">IEEE UJ Raffle</h1>
  </div>
  <div style="padding: 24px;">
    <p>Hi {{buyerName}},</p>
    <p>Thank you for supporting the IEEE UJ Raffle! Your ticket has been registered.</p>
    <ul>
      <li><strong>Ticket Number:</strong> {{ticketNumber}}</li>
      <li><strong>Purchase Date:</strong> {{purchaseDate}}</li>
      <li><strong>Payment Method:</strong> {{paymentMethod}}</li>
      <li><strong>Price:</strong> R{{ticketPrice}}</li>
      <li><strong>Seller:</strong> {{sellerName}} ({{sellerEmail}})</li>
    </ul>
    {{#if eftPayment}}
    <div style="background: #fff4e5; border-left: 4px solid #ff9800; padding: 12px; margin: 16px 0;">
      <p><strong>Payment still pending.</strong> Please complete your EFT of R{{ticketPrice}}
      using your ticket number <strong>{{ticketNumber}}</strong> as the payment reference.
      Your entry is only confirmed once payment is verified.</p>
    </div>
    {{/if}}
    <p>The draw takes place on <strong>{{drawDate}}</strong>. Keep this email safe — your
    ticket number is your entry.</p>
    <p>Good luck!<br>IEEE UJ Student Branch</p>
  </div>
</div>`,
		Variables: []string{
			"buyerName", "ticketNumber", "purchaseDate", "paymentMethod",
			"sellerName", "sellerEmail", "ticketPrice", "drawDate", "eftPayment",
		},
	},
	{
		ID:      "payment_reminder",
		Name:    "EFT Payment Reminder",
		Subject: "⚠️ IEEE UJ Raffle - Payment Reminder for Ticket {{ticketNumber}}",
		Content: `<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background: #00629B; color: #ffffff; padding: 24px; text-align: center;">
    <h1 style="margin: 0;">Payment Reminder</h1>
  </div>
  <div style="padding: 24px;">
    <p>Hi {{buyerName}},</p>
    <p>We have not yet received payment for your raffle ticket <strong>{{ticketNumber}}</strong>
    purchased on {{purchaseDate}} from {{sellerName}}.</p>
    <p>Please pay <strong>R{{ticketPrice}}</strong> within {{daysToDueDate}} days
    (due {{dueDate}}):</p>
    <ul>
      <li><strong>Account Holder:</strong> {{accountHolder}}</li>
      <li><strong>Bank:</strong> {{bankName}}</li>
      <li><strong>Account Number:</strong> {{accountNumber}}</li>
      <li><strong>Branch Code:</strong> {{branchCode}}</li>
      <li><strong>Reference:</strong> {{reference}}</li>
    </ul>
    <p>Unpaid tickets are excluded from the draw on {{drawDate}}.</p>
    <p>IEEE UJ Student Branch</p>
  </div>
</div>`,
		Variables: []string{
			"buyerName", "ticketNumber", "purchaseDate", "sellerName", "ticketPrice",
			"daysToDueDate", "dueDate", "accountHolder", "bankName", "accountNumber",
			"branchCode", "reference", "drawDate",
		},
	},
	{
		ID:      "winner_announcement",
		Name:    "Winner Announcement",
		Subject: "🎉 CONGRATULATIONS! You Won the IEEE UJ Raffle!",
		Content: `<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background: #00629B; color: #ffffff; padding: 24px; text-align: center;">
    <h1 style="margin: 0;">🎉 We Have a Winner!</h1>
  </div>
  <div style="padding: 24px;">
    <p>Dear {{winnerName}},</p>
    <p>Congratulations! Your ticket <strong>{{ticketNumber}}</strong> was drawn as the
    winning entry in the IEEE UJ Raffle held on {{drawDate}}.</p>
    <p>You have won: <strong>{{prizeName}}</strong></p>
    <p>Your ticket was selected from {{totalTickets}} entries. To claim your prize,
    reply to this email or contact us at {{contactEmail}} within 14 days.</p>
    <p>IEEE UJ Student Branch</p>
  </div>
</div>`,
		Variables: []string{
			"winnerName", "ticketNumber", "prizeName", "drawDate", "totalTickets", "contactEmail",
		},
	},
	{
		ID:      "seller_summary",
		Name:    "Daily Seller Summary",
		Subject: "📊 Your IEEE UJ Raffle Sales Summary - {{date}}",
		Content: `<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background: #00629B; color: #ffffff; padding: 24px; text-align: center;">
    <h1 style="margin: 0;">Sales Summary</h1>
  </div>
  <div style="padding: 24px;">
    <p>Hi {{sellerName}},</p>
    <p>Here is your raffle sales summary for {{date}}:</p>
    <ul>
      <li><strong>Tickets sold today:</strong> {{ticketsSoldToday}}</li>
      <li><strong>Revenue today:</strong> R{{revenueToday}}</li>
      <li><strong>Verified today:</strong> {{verifiedToday}}</li>
      <li><strong>Pending today:</strong> {{pendingToday}}</li>
    </ul>
    <p>Campaign totals: {{totalTickets}} tickets, R{{totalRevenue}} raised.
    You are ranked {{sellerRank}} of {{totalSellers}} sellers.</p>
    {{#if topSeller}}
    <div style="background: #e8f5e9; border-left: 4px solid #4caf50; padding: 12px; margin: 16px 0;">
      <p><strong>You are today's top seller — outstanding work! 🏆</strong></p>
    </div>
    {{/if}}
    <p>Keep it up!<br>IEEE UJ Student Branch</p>
  </div>
</div>`,
		Variables: []string{
			"sellerName", "date", "ticketsSoldToday", "revenueToday", "verifiedToday",
			"pendingToday", "totalTickets", "totalRevenue", "sellerRank", "totalSellers",
			"topSeller",
		},
	},
	{
		ID:      "bulk_update",
		Name:    "Bulk Update Notification",
		Subject: "📢 IEEE UJ Raffle - {{updateTitle}}",
		Content: `<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background: #00629B; color: #ffffff; padding: 24px; text-align: center;">
    <h1 style="margin: 0;">{{updateTitle}}</h1>
  </div>
  <div style="padding: 24px;">
    <p>Hi {{recipientName}},</p>
    <p>{{updateContent}}</p>
    <p>A quick reminder: the draw for <strong>{{prizeName}}</strong> takes place on
    <strong>{{drawDate}}</strong>. {{totalTickets}} tickets have been sold so far.</p>
    {{#if actionRequired}}
    <div style="background: #fff4e5; border-left: 4px solid #ff9800; padding: 12px; margin: 16px 0;">
      <p><strong>Action required:</strong> {{actionDetails}}</p>
    </div>
    {{/if}}
    <p>IEEE UJ Student Branch</p>
  </div>
</div>`,
		Variables: []string{
			"recipientName", "updateTitle", "updateContent", "drawDate", "totalTickets",
			"prizeName", "actionRequired", "actionDetails",
		},
	},
}
