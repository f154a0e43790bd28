package ads_tools

// gaqlReference is the static help text served by the gaql_reference tool.
const gaqlReference = `# GAQL (Google Ads Query Language) Quick Reference

## Query structure

    SELECT <fields>
    FROM <resource>
    [WHERE <conditions>]
    [ORDER BY <field> [ASC|DESC]]
    [LIMIT <n>]
    [PARAMETERS <key>=<value>]

## Common resources

- campaign            - campaigns and their settings
- ad_group            - ad groups within campaigns
- ad_group_ad         - ads within ad groups
- ad_group_criterion  - keywords and other targeting criteria
- keyword_view        - keyword performance metrics
- customer            - the account itself
- customer_client     - accounts under a manager (MCC) account
- search_term_view    - actual search queries that triggered ads
- campaign_budget     - shared and campaign budgets

## Common fields

- campaign.id, campaign.name, campaign.status
- ad_group.id, ad_group.name, ad_group.status
- ad_group_criterion.keyword.text, ad_group_criterion.keyword.match_type
- metrics.impressions, metrics.clicks, metrics.cost_micros
- metrics.conversions, metrics.ctr, metrics.average_cpc
- segments.date, segments.device, segments.ad_network_type

## Date ranges

    WHERE segments.date DURING LAST_30_DAYS
    WHERE segments.date DURING LAST_7_DAYS
    WHERE segments.date BETWEEN '2024-01-01' AND '2024-01-31'

## Example queries

List enabled campaigns:

    SELECT campaign.id, campaign.name, campaign.status
    FROM campaign
    WHERE campaign.status = 'ENABLED'
    ORDER BY campaign.name

Campaign performance over the last 30 days:

    SELECT campaign.name, metrics.impressions, metrics.clicks,
           metrics.cost_micros, metrics.conversions
    FROM campaign
    WHERE segments.date DURING LAST_30_DAYS
    ORDER BY metrics.cost_micros DESC

Top search terms by clicks:

    SELECT search_term_view.search_term, metrics.clicks, metrics.impressions
    FROM search_term_view
    WHERE segments.date DURING LAST_7_DAYS
    ORDER BY metrics.clicks DESC
    LIMIT 50

Keywords with match types:

    SELECT ad_group_criterion.keyword.text,
           ad_group_criterion.keyword.match_type,
           metrics.clicks
    FROM keyword_view
    WHERE segments.date DURING LAST_30_DAYS

Accounts under a manager:

    SELECT customer_client.id, customer_client.descriptive_name,
           customer_client.level, customer_client.manager
    FROM customer_client

## Notes

- Costs are in micros: divide cost_micros by 1,000,000 for the account currency.
- String literals use single quotes.
- There is no SELECT *; every field must be listed explicitly.
- Run queries against a specific customer ID, not a manager, for metrics.
`
